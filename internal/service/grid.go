package service

import (
	"sort"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
)

// GridKey addresses one cell of the weekday × slot grid.
type GridKey struct {
	Weekday   models.Weekday
	SlotIndex int
}

// AllocationGrid indexes allocations by grid cell for O(1) lookup. Cells can
// hold more than one allocation; the conflict engine reports those as slot
// over-crowding, the grid itself just groups them.
type AllocationGrid struct {
	catalog      *models.SlotCatalog
	cells        map[GridKey][]models.Allocation
	unpositioned []models.Allocation
	placed       int
}

// BuildAllocationGrid positions allocations against the slot catalog. An
// allocation is positioned only when its window exactly equals a catalog
// slot; anything else lands in the unpositioned list, which is not an error.
func BuildAllocationGrid(catalog *models.SlotCatalog, allocations []models.Allocation) *AllocationGrid {
	grid := &AllocationGrid{
		catalog: catalog,
		cells:   make(map[GridKey][]models.Allocation),
	}
	for _, alloc := range allocations {
		idx, ok := catalog.IndexOf(alloc.Range())
		if !ok || !alloc.Weekday.Valid() {
			grid.unpositioned = append(grid.unpositioned, alloc)
			continue
		}
		key := GridKey{Weekday: alloc.Weekday, SlotIndex: idx}
		grid.cells[key] = append(grid.cells[key], alloc)
		grid.placed++
	}
	return grid
}

// At returns the allocations occupying a cell.
func (g *AllocationGrid) At(day models.Weekday, slotIndex int) []models.Allocation {
	return g.cells[GridKey{Weekday: day, SlotIndex: slotIndex}]
}

// Unpositioned returns allocations that matched no catalog slot.
func (g *AllocationGrid) Unpositioned() []models.Allocation {
	return g.unpositioned
}

// IsFree reports whether a cell holds no allocation.
func (g *AllocationGrid) IsFree(day models.Weekday, slotIndex int) bool {
	return len(g.At(day, slotIndex)) == 0
}

// Response flattens the grid into its transport form, cells ordered by
// weekday then slot index.
func (g *AllocationGrid) Response(total int) dto.AllocationGridResponse {
	keys := make([]GridKey, 0, len(g.cells))
	for key := range g.cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Weekday != keys[j].Weekday {
			return keys[i].Weekday.Index() < keys[j].Weekday.Index()
		}
		return keys[i].SlotIndex < keys[j].SlotIndex
	})

	cells := make([]dto.AllocationGridCell, 0, len(keys))
	slots := g.catalog.Slots()
	for _, key := range keys {
		slot := slots[key.SlotIndex]
		cells = append(cells, dto.AllocationGridCell{
			Weekday:     key.Weekday,
			SlotIndex:   key.SlotIndex,
			Start:       slot.StartMinute.Clock(),
			End:         slot.EndMinute.Clock(),
			Allocations: g.cells[key],
		})
	}
	return dto.AllocationGridResponse{
		Cells:         cells,
		Unpositioned:  g.unpositioned,
		TotalPlaced:   g.placed,
		TotalReceived: total,
	}
}
