package hierarchy

import (
	"context"
	"errors"

	"drystore-backend/internal/apperr"

	"go.uber.org/zap"
)

type FloorLayout struct {
	Name     string
	Counters []string
}

// DefaultLayout is the food-court layout the stores were first opened with.
var DefaultLayout = []FloorLayout{
	{
		Name: "1st",
		Counters: []string{
			"Kitchen (1st Floor)",
			"Chana & Corn",
			"Juice",
			"Tea (1st Floor)",
			"Bread",
			"Chat",
			"Shawarma",
		},
	},
	{
		Name: "6th",
		Counters: []string{
			"Kitchen (6th Floor)",
			"Tea (6th Floor)",
			"Muntha Masala",
		},
	},
}

// Seed creates whatever part of layout is missing. Existing floors and
// counters are left untouched.
func (s *Service) Seed(ctx context.Context, layout []FloorLayout) error {
	created := 0
	for _, fl := range layout {
		floor, err := s.store.FindFloorByName(ctx, fl.Name)
		if errors.Is(err, apperr.ErrNotFound) {
			floor, err = s.AddFloor(ctx, fl.Name)
			created++
		}
		if err != nil {
			return err
		}
		for _, name := range fl.Counters {
			_, err := s.AddCounter(ctx, floor.ID, name)
			switch {
			case err == nil:
				created++
			case errors.Is(err, apperr.ErrDuplicateName):
			default:
				return err
			}
		}
	}
	s.log.Info("hierarchy layout seeded", zap.Int("created", created))
	return nil
}
