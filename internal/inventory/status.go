package inventory

import (
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// DeriveStatus computes the availability bucket from quantity vs reorder
// level. Pure; the status is never persisted as independent truth.
func DeriveStatus(inv *models.Inventory) enums.InventoryStatus {
	if inv == nil || inv.Quantity == 0 {
		return enums.InventoryStatusOut
	}
	if inv.Quantity <= inv.ReorderLevel {
		return enums.InventoryStatusLow
	}
	return enums.InventoryStatusAvailable
}
