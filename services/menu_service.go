package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/repository"
)

type MenuService struct {
	store repository.Reader
}

func NewMenuService(store repository.Reader) *MenuService {
	return &MenuService{store: store}
}

// FetchMenu resolves the table without locking and returns the orderable menu.
func (s *MenuService) FetchMenu(ctx context.Context, qrToken string) (*MenuResponse, error) {
	table, err := s.store.ResolveActiveTable(ctx, qrToken)
	if err != nil {
		return nil, translate(gateError(err))
	}
	if !table.RestaurantActive {
		return nil, apperr.BusinessRule("Restaurant is inactive")
	}

	categories, err := s.store.ListActiveCategories(ctx, table.RestaurantID)
	if err != nil {
		return nil, translate(err)
	}
	items, err := s.store.ListAvailableMenuItems(ctx, table.RestaurantID)
	if err != nil {
		return nil, translate(err)
	}

	resp := &MenuResponse{
		RestaurantName: table.RestaurantName,
		TableNumber:    table.TableNumber,
		Categories:     make([]MenuCategoryDTO, 0, len(categories)),
		Items:          make([]MenuItemDTO, 0, len(items)),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, MenuCategoryDTO{ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder})
	}
	for _, m := range items {
		resp.Items = append(resp.Items, MenuItemDTO{
			ID:           m.ID,
			CategoryID:   m.CategoryID,
			Name:         m.Name,
			Description:  m.Description,
			Price:        money(m.Price),
			Available:    m.Available,
			DisplayOrder: m.DisplayOrder,
		})
	}

	logrus.WithFields(logrus.Fields{
		"restaurantId": table.RestaurantID,
		"tableNumber":  table.TableNumber,
		"items":        len(resp.Items),
	}).Debug("menu fetched")
	return resp, nil
}
