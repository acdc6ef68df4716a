package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/fastshift/internal/metrics"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/queue"
	"github.com/iliyamo/fastshift/internal/store"
)

// ParcelService owns parcel state transitions and the rider workload
// bookkeeping that goes with assignment.
type ParcelService struct {
	base
}

// Create books p. Client fields are stored as sent; the lifecycle fields
// always start at the beginning of the state machine.
func (s *ParcelService) Create(ctx context.Context, p *model.Parcel) (string, error) {
	now := s.now()
	p.CreatedBy = normalizeEmail(p.CreatedBy)
	p.PaymentStatus = model.PaymentUnpaid
	p.DeliveryStatus = model.DeliveryNotCollected
	p.CashoutStatus = model.CashoutPending
	p.AssignedRiderID, p.AssignedRiderEmail, p.AssignedRiderName = "", "", ""
	p.AssignedAt, p.PickedAt, p.DeliveredAt, p.CashedOutAt = nil, nil, nil, nil
	p.CreatedAt = now
	if strings.TrimSpace(p.TrackingID) == "" {
		p.TrackingID = newTrackingID(now.Format("20060102"))
	}

	id, err := s.st.Parcels.Insert(ctx, p)
	if err != nil {
		return "", s.fail("parcel.create", "Failed to create parcel", err)
	}
	metrics.ParcelsCreatedTotal.Inc()
	s.publish(ctx, queue.ParcelEvent{
		Type: queue.EventCreated, ParcelID: id,
		DeliveryStatus: string(p.DeliveryStatus), Actor: p.CreatedBy,
	})
	return id, nil
}

func newTrackingID(day string) string {
	return fmt.Sprintf("PCL-%s-%s", day, strings.ToUpper(uuid.NewString()[:8]))
}

// List returns every parcel, newest first.
func (s *ParcelService) List(ctx context.Context) ([]*model.Parcel, error) {
	out, err := s.st.Parcels.List(ctx, store.ParcelFilter{}, store.SortCreatedDesc)
	if err != nil {
		return nil, s.fail("parcel.list", "Failed to fetch parcels", err)
	}
	return out, nil
}

func (s *ParcelService) Get(ctx context.Context, id string) (*model.Parcel, error) {
	p, err := s.st.Parcels.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Parcel not found")
		}
		return nil, s.fail("parcel.get", "Failed to fetch parcel", err)
	}
	return p, nil
}

// ListByCreator returns the parcels booked by queryEmail. Only that email's
// principal may read them.
func (s *ParcelService) ListByCreator(ctx context.Context, principalEmail, queryEmail string) ([]*model.Parcel, error) {
	if err := ownEmail(principalEmail, queryEmail); err != nil {
		return nil, err
	}
	out, err := s.st.Parcels.List(ctx,
		store.ParcelFilter{CreatedBy: normalizeEmail(queryEmail)}, store.SortCreatedDesc)
	if err != nil {
		return nil, s.fail("parcel.list_mine", "Failed to fetch parcels", err)
	}
	return out, nil
}

// ListAssignable returns paid parcels that have not been collected yet.
func (s *ParcelService) ListAssignable(ctx context.Context) ([]*model.Parcel, error) {
	out, err := s.st.Parcels.List(ctx, store.ParcelFilter{
		PaymentStatus:    model.PaymentPaid,
		DeliveryStatuses: []model.DeliveryStatus{model.DeliveryNotCollected},
	}, store.SortCreatedDesc)
	if err != nil {
		return nil, s.fail("parcel.list_assignable", "Failed to fetch assignable parcels", err)
	}
	return out, nil
}

// AssignInput names the rider taking a parcel. Name and email default to
// the rider's record.
type AssignInput struct {
	RiderID    string
	RiderName  string
	RiderEmail string
}

// AssignResult reports both writes of an assignment. RiderError is set when
// the parcel was assigned but the rider workload update failed.
type AssignResult struct {
	Parcel     store.UpdateResult `json:"parcel"`
	Rider      store.UpdateResult `json:"rider"`
	RiderError string             `json:"rider_error,omitempty"`
}

// AssignRider sets the parcel's rider fields together with rider_assigned,
// then flips the rider to in_delivery. The two writes are independent
// unless atomic writes are enabled: a failed rider update is logged and
// reported in the result, never rolled back.
func (s *ParcelService) AssignRider(ctx context.Context, parcelID string, in AssignInput) (AssignResult, error) {
	if strings.TrimSpace(in.RiderID) == "" {
		return AssignResult{}, badRequest("rider_id is required")
	}
	rider, err := s.st.Riders.Get(ctx, in.RiderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AssignResult{}, notFound("Rider not found")
		}
		return AssignResult{}, s.fail("parcel.assign", "Failed to load rider", err)
	}
	if rider.Status != model.RiderActive {
		return AssignResult{}, badRequest("Rider is not active")
	}
	a := model.Assignment{
		RiderID:    rider.ID,
		RiderName:  firstNonEmpty(in.RiderName, rider.Name),
		RiderEmail: normalizeEmail(firstNonEmpty(in.RiderEmail, rider.Email)),
		At:         s.now(),
	}

	var res AssignResult
	err = s.run(ctx, func(ctx context.Context, st *store.Store) error {
		res = AssignResult{}
		pr, err := st.Parcels.Assign(ctx, parcelID, a)
		if err != nil {
			return s.fail("parcel.assign", "Failed to assign rider", err)
		}
		res.Parcel = pr
		if pr.Matched == 0 {
			// not found, unpaid, or already past not_collected
			if _, err := st.Parcels.Get(ctx, parcelID); errors.Is(err, store.ErrNotFound) {
				return notFound("Parcel not found")
			}
			return nil
		}

		rr, err := st.Riders.SetWorkStatus(ctx, rider.ID, model.WorkInDelivery)
		if err != nil {
			if s.atomic {
				return s.fail("parcel.assign_rider", "Failed to update rider status", err)
			}
			metrics.OperationErrorsTotal.WithLabelValues("parcel.assign_rider").Inc()
			s.log.Error("rider work status update failed after assignment",
				zap.String("parcel_id", parcelID),
				zap.String("rider_id", rider.ID),
				zap.Error(err))
			res.RiderError = err.Error()
			return nil
		}
		res.Rider = rr
		return nil
	})
	if err != nil {
		return AssignResult{}, err
	}

	if res.Parcel.Modified > 0 {
		metrics.RidersAssignedTotal.Inc()
		s.publish(ctx, queue.ParcelEvent{
			Type: queue.EventAssigned, ParcelID: parcelID,
			DeliveryStatus: string(model.DeliveryRiderAssigned), RiderEmail: a.RiderEmail,
		})
	}
	return res, nil
}

// ListRiderTasks returns a rider's open parcels, most recently assigned
// first.
func (s *ParcelService) ListRiderTasks(ctx context.Context, principalEmail, riderEmail string) ([]*model.Parcel, error) {
	return s.listForRider(ctx, "parcel.rider_tasks", principalEmail, riderEmail, model.ActiveDeliveryStatuses)
}

// ListRiderCompleted returns a rider's delivered parcels, most recently
// assigned first.
func (s *ParcelService) ListRiderCompleted(ctx context.Context, principalEmail, riderEmail string) ([]*model.Parcel, error) {
	return s.listForRider(ctx, "parcel.rider_completed", principalEmail, riderEmail, model.CompletedDeliveryStatuses)
}

func (s *ParcelService) listForRider(ctx context.Context, op, principalEmail, riderEmail string, statuses []model.DeliveryStatus) ([]*model.Parcel, error) {
	if err := ownEmail(principalEmail, riderEmail); err != nil {
		return nil, err
	}
	out, err := s.st.Parcels.List(ctx, store.ParcelFilter{
		RiderEmail:       normalizeEmail(riderEmail),
		DeliveryStatuses: statuses,
	}, store.SortAssignedDesc)
	if err != nil {
		return nil, s.fail(op, "Failed to fetch rider parcels", err)
	}
	return out, nil
}

// MarkPickedUp moves a rider_assigned parcel to in_transit.
func (s *ParcelService) MarkPickedUp(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.advance(ctx, id, model.DeliveryInTransit, queue.EventPickedUp)
}

// MarkDelivered moves an in_transit parcel to a terminal status; an empty
// status means delivered.
func (s *ParcelService) MarkDelivered(ctx context.Context, id string, status model.DeliveryStatus) (store.UpdateResult, error) {
	if status == "" {
		status = model.DeliveryDelivered
	}
	if !status.Terminal() {
		return store.UpdateResult{}, badRequest("delivery_status must be delivered or service_center_delivered")
	}
	return s.advance(ctx, id, status, queue.EventDelivered)
}

// advance applies a conditional transition. A parcel not holding the
// predecessor status is left untouched and zero counts come back.
func (s *ParcelService) advance(ctx context.Context, id string, to model.DeliveryStatus, event string) (store.UpdateResult, error) {
	res, err := s.st.Parcels.Advance(ctx, id, to, s.now())
	if err != nil {
		return store.UpdateResult{}, s.fail("parcel.advance", "Failed to update parcel status", err)
	}
	if res.Modified > 0 {
		metrics.ParcelTransitionsTotal.WithLabelValues(string(to)).Inc()
		s.publish(ctx, queue.ParcelEvent{Type: event, ParcelID: id, DeliveryStatus: string(to)})
	} else {
		s.log.Debug("parcel transition matched nothing",
			zap.String("parcel_id", id), zap.String("to", string(to)))
	}
	return res, nil
}

// Cashout records the rider payout for a parcel once. Delivery is not
// checked first.
func (s *ParcelService) Cashout(ctx context.Context, id string) (store.UpdateResult, error) {
	res, err := s.st.Parcels.Cashout(ctx, id, s.now())
	if err != nil {
		return store.UpdateResult{}, s.fail("parcel.cashout", "Failed to cash out parcel", err)
	}
	if res.Modified > 0 {
		metrics.CashoutsTotal.Inc()
		s.publish(ctx, queue.ParcelEvent{Type: queue.EventCashedOut, ParcelID: id})
	}
	return res, nil
}

// StatusCounts returns the number of parcels per delivery status.
func (s *ParcelService) StatusCounts(ctx context.Context) ([]model.StatusCount, error) {
	out, err := s.st.Parcels.CountByDeliveryStatus(ctx)
	if err != nil {
		return nil, s.fail("parcel.status_count", "Failed to count parcels", err)
	}
	return out, nil
}

// Delete removes a parcel and returns the deleted count.
func (s *ParcelService) Delete(ctx context.Context, id string) (int64, error) {
	n, err := s.st.Parcels.Delete(ctx, id)
	if err != nil {
		return 0, s.fail("parcel.delete", "Failed to delete parcel", err)
	}
	if n == 0 {
		return 0, notFound("Parcel not found")
	}
	s.publish(ctx, queue.ParcelEvent{Type: queue.EventDeleted, ParcelID: id})
	return n, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
