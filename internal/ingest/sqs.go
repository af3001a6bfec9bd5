// Package ingest applies brand configuration changes delivered through an SQS queue. Each message
// body is one Change; the queue's message group is expected to be the tenant so changes to a tenant
// are applied in order.
package ingest

import (
	"brandtheme/internal/store"
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	OpPut        = "put"
	OpDelete     = "delete"
	OpColors     = "colors"
	OpFontUpsert = "font.upsert"
	OpFontDelete = "font.delete"

	messageGroupAttr = "MessageGroupId"
)

// Change is the JSON message body.
type Change struct {
	Op      string             `json:"op"`
	Tenant  string             `json:"tenant"`
	Config  *types.BrandConfig `json:"config,omitempty"`
	Colors  map[string]string  `json:"colors,omitempty"`
	Slot    string             `json:"slot,omitempty"`
	Family  string             `json:"family,omitempty"`
	Variant *types.FontVariant `json:"variant,omitempty"`
}

// Handler holds the dependencies needed to process SQS messages.
type Handler struct {
	Store *store.Adapter
}

func NewHandler(s *store.Adapter) *Handler {
	return &Handler{Store: s}
}

// HandleSQSEvent applies every record of the batch. Failed records are reported back so only they
// are redelivered; once a record fails, later records of the same message group are reported as
// failed without being applied.
func (h *Handler) HandleSQSEvent(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	log.Infof("Processing batch of %d messages", len(sqsEvent.Records))

	var failures []events.SQSBatchItemFailure
	blocked := map[string]bool{}
	for _, record := range sqsEvent.Records {
		group := record.Attributes[messageGroupAttr]
		if group != "" && blocked[group] {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		if err := h.processMessage(ctx, record); err != nil {
			log.WithError(err).WithField("messageID", record.MessageId).Error("Failed to apply change")
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			if group != "" {
				blocked[group] = true
			}
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	var c Change
	if err := json.Unmarshal([]byte(record.Body), &c); err != nil {
		return fmt.Errorf("parse message body: %w", err)
	}
	if c.Tenant == "" {
		return fmt.Errorf("%w: tenant is required", types.ErrInvalidBrandConfig)
	}

	log.WithFields(log.Fields{
		"op":        c.Op,
		"tenant":    c.Tenant,
		"messageID": record.MessageId,
	}).Debug("Processing message")

	return h.Apply(ctx, c)
}

// Apply performs one change against the store.
func (h *Handler) Apply(ctx context.Context, c Change) error {
	switch c.Op {
	case OpPut:
		if c.Config == nil {
			return fmt.Errorf("%w: put requires config", types.ErrInvalidBrandConfig)
		}
		err := h.Store.Create(ctx, c.Tenant, *c.Config)
		if errors.Is(err, types.ErrAlreadyExists) {
			err = h.Store.Replace(ctx, c.Tenant, *c.Config)
		}
		return err
	case OpDelete:
		return h.Store.Delete(ctx, c.Tenant)
	case OpColors:
		return h.Store.UpdateColors(ctx, c.Tenant, c.Colors)
	case OpFontUpsert:
		if c.Variant == nil {
			return fmt.Errorf("%w: font.upsert requires variant", types.ErrInvalidBrandConfig)
		}
		_, err := h.Store.UpsertFontVariant(ctx, c.Tenant, slotOrPrimary(c.Slot), c.Family, *c.Variant)
		return err
	case OpFontDelete:
		if c.Variant == nil {
			return fmt.Errorf("%w: font.delete requires variant", types.ErrInvalidBrandConfig)
		}
		return h.Store.DeleteFontVariant(ctx, c.Tenant, slotOrPrimary(c.Slot), c.Variant.Weight, c.Variant.Style)
	default:
		return fmt.Errorf("unknown op %q", c.Op)
	}
}

func slotOrPrimary(slot string) string {
	if slot == "" {
		return types.FontSlotPrimary
	}
	return slot
}
