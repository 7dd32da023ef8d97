package core

import (
	"context"
	"slices"

	"nutritrack/pkg/domain"
)

func planFromInput(id int, in domain.PlanInput) domain.Plan {
	return domain.Plan{
		ID:        id,
		PatientID: integer(in.PatientID),
		Day:       text(in.Day),
		Breakfast: text(in.Breakfast),
		Lunch:     text(in.Lunch),
		Dinner:    text(in.Dinner),
		Snack:     text(in.Snack),
	}
}

// AddPlan inserts a meal plan day at the front of the collection.
func (s *Store) AddPlan(ctx context.Context, in domain.PlanInput) (domain.Plan, error) {
	var created domain.Plan
	err := s.mutate(ctx, "add_plan", func(st *domain.Snapshot) *change {
		id := issueID(&st.Sequences.Plans, maxID(st.Plans, func(p domain.Plan) int { return p.ID }))
		created = planFromInput(id, in)
		st.Plans = append([]domain.Plan{created}, st.Plans...)
		return &change{entity: domain.EntityPlan, action: domain.ActionCreate, id: id}
	})
	return created, err
}

// UpdatePlan replaces the editable fields of plan id. Unknown ids are ignored.
func (s *Store) UpdatePlan(ctx context.Context, id int, in domain.PlanInput) error {
	return s.mutate(ctx, "update_plan", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Plans, func(p domain.Plan) bool { return p.ID == id })
		if i < 0 {
			return nil
		}
		st.Plans[i] = planFromInput(id, in)
		return &change{entity: domain.EntityPlan, action: domain.ActionUpdate, id: id}
	})
}

// RemovePlan deletes plan id.
func (s *Store) RemovePlan(ctx context.Context, id int) error {
	return s.mutate(ctx, "remove_plan", func(st *domain.Snapshot) *change {
		st.Plans = slices.DeleteFunc(st.Plans, func(p domain.Plan) bool { return p.ID == id })
		return &change{entity: domain.EntityPlan, action: domain.ActionDelete, id: id}
	})
}
