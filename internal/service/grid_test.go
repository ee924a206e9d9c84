package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func TestBuildAllocationGridPlacesExactMatches(t *testing.T) {
	catalog := testCatalog([2]int{450, 500}, [2]int{500, 550})
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 500, 550),
		testAllocation("a3", "sec-3", "prof-3", models.WeekdayFriday, 450, 500),
	}

	grid := BuildAllocationGrid(catalog, allocations)
	require.Len(t, grid.At(models.WeekdayMonday, 0), 1)
	require.Len(t, grid.At(models.WeekdayMonday, 1), 1)
	require.Len(t, grid.At(models.WeekdayFriday, 0), 1)
	assert.True(t, grid.IsFree(models.WeekdayTuesday, 0))
	assert.Empty(t, grid.Unpositioned())
}

func TestBuildAllocationGridUnpositionedSubRange(t *testing.T) {
	catalog := testCatalog([2]int{450, 500})
	allocations := []models.Allocation{
		// Contained in the slot but not equal to it.
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 460, 490),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 450, 500),
	}

	grid := BuildAllocationGrid(catalog, allocations)
	require.Len(t, grid.Unpositioned(), 1)
	assert.Equal(t, "a1", grid.Unpositioned()[0].ID)
	require.Len(t, grid.At(models.WeekdayMonday, 0), 1)
	assert.Equal(t, "a2", grid.At(models.WeekdayMonday, 0)[0].ID)
}

func TestBuildAllocationGridGroupsCrowdedCells(t *testing.T) {
	catalog := testCatalog([2]int{450, 500})
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 450, 500),
	}

	grid := BuildAllocationGrid(catalog, allocations)
	assert.Len(t, grid.At(models.WeekdayMonday, 0), 2, "crowded cells group, they do not error")
}

func TestAllocationGridResponseOrdering(t *testing.T) {
	catalog := testCatalog([2]int{450, 500}, [2]int{500, 550})
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayFriday, 500, 550),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 500, 550),
		testAllocation("a3", "sec-3", "prof-3", models.WeekdayMonday, 450, 500),
		testAllocation("a4", "sec-4", "prof-4", models.WeekdayMonday, 455, 500), // no slot match
	}

	resp := BuildAllocationGrid(catalog, allocations).Response(len(allocations))
	require.Len(t, resp.Cells, 3)
	assert.Equal(t, models.WeekdayMonday, resp.Cells[0].Weekday)
	assert.Equal(t, 0, resp.Cells[0].SlotIndex)
	assert.Equal(t, "07:30", resp.Cells[0].Start)
	assert.Equal(t, models.WeekdayMonday, resp.Cells[1].Weekday)
	assert.Equal(t, 1, resp.Cells[1].SlotIndex)
	assert.Equal(t, models.WeekdayFriday, resp.Cells[2].Weekday)
	assert.Equal(t, 3, resp.TotalPlaced)
	assert.Equal(t, 4, resp.TotalReceived)
	require.Len(t, resp.Unpositioned, 1)
	assert.Equal(t, "a4", resp.Unpositioned[0].ID)
}
