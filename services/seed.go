package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
	"github.com/ray-remotestate/tableqr/utils"
)

const (
	DemoRestaurantCode = "DEMO"
	DemoTableToken     = "DEMO-TABLE-1"
	demoPassword       = "123456"
)

// SeedDemo loads a demo restaurant with one table, a small menu and two staff
// accounts. It does nothing when any staff user already exists.
func SeedDemo(ctx context.Context, store repository.Store, clock Clock) error {
	count, err := store.CountStaffUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count staff users: %w", err)
	}
	if count > 0 {
		logrus.Info("staff users present, skipping demo seed")
		return nil
	}

	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	restaurant := models.Restaurant{ID: uuid.New(), Name: "Demo Restaurant", Code: DemoRestaurantCode, Active: true, CreatedAt: clock.now()}
	table := models.Table{ID: uuid.New(), RestaurantID: restaurant.ID, TableNumber: 1, QRToken: DemoTableToken, Active: true}
	drinks := models.MenuCategory{ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Drinks", DisplayOrder: 1, Active: true}
	items := []models.MenuItem{
		{ID: uuid.New(), RestaurantID: restaurant.ID, CategoryID: drinks.ID, Name: "Cola", Description: "Chilled 0.33l can",
			Price: decimal.RequireFromString("2.50"), Available: true, Active: true, DisplayOrder: 1},
		{ID: uuid.New(), RestaurantID: restaurant.ID, CategoryID: drinks.ID, Name: "Water", Description: "Still 0.5l",
			Price: decimal.RequireFromString("1.50"), Available: false, Active: true, DisplayOrder: 2},
	}
	users := []models.StaffUser{
		{ID: uuid.New(), RestaurantID: restaurant.ID, Username: "manager1", PasswordHash: hash, Role: models.RoleManager, Active: true},
		{ID: uuid.New(), RestaurantID: restaurant.ID, Username: "staff1", PasswordHash: hash, Role: models.RoleStaff, Active: true},
	}

	err = store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.InsertRestaurant(ctx, &restaurant); err != nil {
			return err
		}
		if err := tx.InsertTable(ctx, &table); err != nil {
			return err
		}
		if err := tx.InsertMenuCategory(ctx, &drinks); err != nil {
			return err
		}
		for i := range items {
			if err := tx.InsertMenuItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		for i := range users {
			if err := tx.InsertStaffUser(ctx, &users[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"restaurant": restaurant.Code,
		"qrToken":    table.QRToken,
	}).Info("demo data seeded")
	return nil
}
