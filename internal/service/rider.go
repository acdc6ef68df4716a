package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/fastshift/internal/metrics"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

// RiderService handles rider applications and their activation.
type RiderService struct {
	base
}

// Submit files a rider application. It always starts pending and available.
func (s *RiderService) Submit(ctx context.Context, r *model.Rider) (string, error) {
	r.Status = model.RiderPending
	r.WorkStatus = model.WorkAvailable
	r.CreatedAt = s.now()
	id, err := s.st.Riders.Insert(ctx, r)
	if err != nil {
		return "", s.fail("rider.submit", "Failed to submit rider application", err)
	}
	return id, nil
}

func (s *RiderService) ListPending(ctx context.Context) ([]*model.Rider, error) {
	return s.list(ctx, "rider.list_pending", "Failed to fetch pending riders",
		store.RiderFilter{Status: model.RiderPending})
}

func (s *RiderService) ListActive(ctx context.Context) ([]*model.Rider, error) {
	return s.list(ctx, "rider.list_active", "Failed to fetch active riders",
		store.RiderFilter{Status: model.RiderActive})
}

// ListAvailable returns the active riders of a district.
func (s *RiderService) ListAvailable(ctx context.Context, district string) ([]*model.Rider, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, badRequest("district query parameter is required")
	}
	return s.list(ctx, "rider.list_available", "Failed to fetch riders",
		store.RiderFilter{Status: model.RiderActive, District: district})
}

func (s *RiderService) list(ctx context.Context, op, msg string, f store.RiderFilter) ([]*model.Rider, error) {
	out, err := s.st.Riders.List(ctx, f)
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	return out, nil
}

// StatusResult reports a rider status change. User is set when activation
// promoted the rider's user account; UserError when that promotion failed.
type StatusResult struct {
	store.UpdateResult
	User      *store.UpdateResult `json:"user,omitempty"`
	UserError string              `json:"user_error,omitempty"`
}

// SetStatus updates a rider's status. Activation also gives the user with
// the rider's email the rider role; email defaults to the rider record.
func (s *RiderService) SetStatus(ctx context.Context, id string, status model.RiderStatus, email string) (StatusResult, error) {
	if !status.Valid() {
		return StatusResult{}, badRequest("status must be pending, active or rejected")
	}

	var res StatusResult
	err := s.run(ctx, func(ctx context.Context, st *store.Store) error {
		res = StatusResult{}
		ur, err := st.Riders.SetStatus(ctx, id, status)
		if err != nil {
			return s.fail("rider.set_status", "Failed to update rider status", err)
		}
		res.UpdateResult = ur
		if status != model.RiderActive {
			return nil
		}

		// a rider already active may report zero matched rows
		if ur.Matched == 0 || strings.TrimSpace(email) == "" {
			r, err := st.Riders.Get(ctx, id)
			switch {
			case errors.Is(err, store.ErrNotFound):
				return nil
			case err != nil:
				return s.fail("rider.set_status", "Failed to load rider", err)
			}
			if strings.TrimSpace(email) == "" {
				email = r.Email
			}
		}
		if strings.TrimSpace(email) == "" {
			return nil
		}

		pr, err := st.Users.SetRoleByEmail(ctx, email, model.RoleRider)
		if err != nil {
			if s.atomic {
				return s.fail("rider.promote", "Failed to promote rider", err)
			}
			metrics.OperationErrorsTotal.WithLabelValues("rider.promote").Inc()
			s.log.Error("role promotion failed after rider activation",
				zap.String("rider_id", id), zap.String("email", email), zap.Error(err))
			res.UserError = err.Error()
			return nil
		}
		res.User = &pr
		return nil
	})
	if err != nil {
		return StatusResult{}, err
	}
	return res, nil
}
