package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrForbidden is returned when the requester may not see or change a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned for payloads that pass binding but break a domain rule.
	ErrInvalidInput = errors.New("invalid input")
)

// MailNotifier is told when new mail has been committed to the outbox.
type MailNotifier interface {
	Nudge()
}

type noopNotifier struct{}

func (noopNotifier) Nudge() {}

func notifierOrNoop(n MailNotifier) MailNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// AttributesNotFoundError lists the survey attribute IDs an answer referenced
// that do not belong to the survey. It matches ErrSurveyAttributeNotFound.
type AttributesNotFoundError struct {
	IDs []uuid.UUID
}

func newAttributesNotFoundError(ids []uuid.UUID) *AttributesNotFoundError {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	return &AttributesNotFoundError{IDs: sorted}
}

func (e *AttributesNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("survey attributes not found: [%s]", strings.Join(ids, ", "))
}

func (e *AttributesNotFoundError) Is(target error) bool {
	return target == ErrSurveyAttributeNotFound
}
