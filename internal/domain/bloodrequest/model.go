package bloodrequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusEnRoute    Status = "en_route"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusProcessing,
		StatusEnRoute, StatusDelivered, StatusCompleted:
		return true
	}
	return false
}

// transitions is the enforced fulfillment graph. rejected and completed are
// terminal. The transfer-binding side effect may additionally jump a
// pending request straight to processing.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected},
	StatusAccepted:   {StatusProcessing},
	StatusProcessing: {StatusEnRoute},
	StatusEnRoute:    {StatusDelivered},
	StatusDelivered:  {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Urgency string

const (
	UrgencyEmergency  Urgency = "emergency"
	UrgencyRegular    Urgency = "regular"
	UrgencyFutureNeed Urgency = "future_need"
)

func ValidUrgency(u Urgency) bool {
	return u == UrgencyEmergency || u == UrgencyRegular || u == UrgencyFutureNeed
}

// RequestItem is one {blood group, units} line of a request.
type RequestItem struct {
	ID         uuid.UUID   `json:"id"`
	RequestID  uuid.UUID   `json:"request_id"`
	BloodGroup blood.Group `json:"blood_group"`
	Units      int         `json:"units"`
	Position   int         `json:"position"`
}

// RequestNote is one timestamped entry of a request's note log.
type RequestNote struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorKind string    `json:"author_kind"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// BloodRequest is one hospital's ask to one NGO. Never deleted; it only
// moves toward a terminal state.
type BloodRequest struct {
	ID         uuid.UUID `json:"id"`
	HospitalID uuid.UUID `json:"hospital_id"`
	NGOID      uuid.UUID `json:"ngo_id"`
	Urgency    Urgency   `json:"urgency"`
	Status     Status    `json:"status"`

	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	DeliveredBy         *string    `json:"delivered_by,omitempty"`
	ReceivedBy          *string    `json:"received_by,omitempty"`
	ConfirmationCode    *string    `json:"confirmation_code,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*RequestItem `json:"items"`
	Notes []*RequestNote `json:"notes,omitempty"`
}
