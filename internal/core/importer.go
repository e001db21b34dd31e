package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/smsdesk/internal/logging"
)

// Importer runs bulk imports against a ContactStore.
type Importer struct {
	store ContactStore
}

// NewImporter creates an Importer that persists valid batches to store.
func NewImporter(store ContactStore) *Importer {
	return &Importer{store: store}
}

// Import parses, validates and submits raw for owner. Every expected failure
// is described by the outcome; the error is non-nil only for an owner
// without a user ID.
func (im *Importer) Import(ctx context.Context, raw string, owner OwnerContext) (ImportOutcome, error) {
	if err := owner.Validate(); err != nil {
		return ImportOutcome{}, err
	}

	logger := importLogger(ctx, owner)
	start := time.Now()

	candidates, err := ParseAndValidate(raw)
	if err != nil {
		outcome := structuralOutcome(err)
		logger.Info("import finished", "state", outcome.State, "reason", "structural", "error", err)
		return outcome, nil
	}

	outcome := im.submit(ctx, logger, candidates, owner)
	logger.Info("import finished",
		"state", outcome.State,
		"rows", len(candidates),
		"imported", outcome.ImportedCount,
		"duration", time.Since(start),
	)
	return outcome, nil
}

// Submit applies the fail-closed policy to already validated candidates and
// calls the store at most once.
func (im *Importer) Submit(ctx context.Context, candidates []ImportCandidate, owner OwnerContext) (ImportOutcome, error) {
	if err := owner.Validate(); err != nil {
		return ImportOutcome{}, err
	}
	return im.submit(ctx, importLogger(ctx, owner), candidates, owner), nil
}

func (im *Importer) submit(ctx context.Context, logger *slog.Logger, candidates []ImportCandidate, owner OwnerContext) ImportOutcome {
	valid, invalid := Partition(candidates)

	if len(invalid) > 0 {
		return rejected(CollectErrors(invalid))
	}
	if len(valid) == 0 {
		return rejected([]string{MsgNoValidContacts})
	}

	contacts := make([]NewContact, len(valid))
	for i, c := range valid {
		contacts[i] = c.Contact()
	}

	logger.Debug("submitting contacts", "count", len(contacts))
	result, err := im.store.BulkCreate(ctx, owner, contacts)
	if err != nil {
		logger.Error("bulk create failed", "error", err, "count", len(contacts))
		return collaboratorFailed()
	}
	if len(result.Failures) > 0 {
		logger.Error("bulk create rejected contacts",
			"failures", result.Failures,
			"created", result.CreatedCount,
			"count", len(contacts),
		)
		return collaboratorFailed()
	}
	if result.CreatedCount != len(contacts) {
		logger.Warn("store created count differs from batch size",
			"created", result.CreatedCount,
			"count", len(contacts),
		)
	}

	return succeeded(len(valid))
}

// Validate is a dry run of Import: it reports what Import would return
// without calling any store. ImportedCount is the number of rows that would
// be imported.
func Validate(raw string) ImportOutcome {
	candidates, err := ParseAndValidate(raw)
	if err != nil {
		return structuralOutcome(err)
	}

	valid, invalid := Partition(candidates)
	switch {
	case len(invalid) > 0:
		return rejected(CollectErrors(invalid))
	case len(valid) == 0:
		return rejected([]string{MsgNoValidContacts})
	}

	outcome := succeeded(len(valid))
	outcome.State = StateValidated
	return outcome
}

// Partition splits candidates into valid and invalid, preserving order.
func Partition(candidates []ImportCandidate) (valid, invalid []ImportCandidate) {
	for _, c := range candidates {
		if c.Valid() {
			valid = append(valid, c)
		} else {
			invalid = append(invalid, c)
		}
	}
	return valid, invalid
}

// CollectErrors flattens candidate errors in row order.
func CollectErrors(candidates []ImportCandidate) []string {
	var errs []string
	for _, c := range candidates {
		errs = append(errs, c.Errors...)
	}
	return errs
}

func structuralOutcome(err error) ImportOutcome {
	var se *StructuralError
	if errors.As(err, &se) {
		return rejected([]string{se.Error()})
	}
	return rejected([]string{err.Error()})
}

func importLogger(ctx context.Context, owner OwnerContext) *slog.Logger {
	logger := logging.WithFields(ctx,
		"import_id", uuid.NewString(),
		"owner_id", owner.UserID,
	)
	if ip := IPAddressFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	return logger
}
