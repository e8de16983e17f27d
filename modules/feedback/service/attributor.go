// Package service implements the feedback attributor (spec.md §4.5):
// idempotent handlers for inbound interaction events, each a thin,
// deliberately dumb wrapper over ledger.AttributeArticleInteraction.
package service

import (
	"context"

	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	ledgerPorts "github.com/iai-group/arxivdigest-go/modules/ledger/ports"
)

// Attributor mutates Impression interaction flags in response to inbound
// feedback events. Every method is idempotent per spec.md §4.5 -- a
// second call for an already-set flag is a silent no-op, never an error,
// except SaveWeb which is an explicit set/clear toggle.
type Attributor struct {
	store ledgerPorts.LedgerStore
}

// NewAttributor creates a new feedback attributor.
func NewAttributor(store ledgerPorts.LedgerStore) *Attributor {
	return &Attributor{store: store}
}

// ClickWeb records that a user clicked an article's read link on the web
// surface. Monotonic: once set, later calls are no-ops.
func (a *Attributor) ClickWeb(ctx context.Context, userID int64, articleID string) error {
	return a.store.AttributeArticleInteraction(ctx, ledgerModel.InteractionClickWeb, userID, articleID, nil, false)
}

// SeenWeb records that an article impression was rendered to the user in
// the web surface. Monotonic.
func (a *Attributor) SeenWeb(ctx context.Context, userID int64, articleID string) error {
	return a.store.AttributeArticleInteraction(ctx, ledgerModel.InteractionSeenWeb, userID, articleID, nil, false)
}

// SaveWeb sets or clears the saved flag, per spec.md §4.5's explicit
// exception to monotonicity: a web "save" toggle can be undone.
func (a *Attributor) SaveWeb(ctx context.Context, userID int64, articleID string, flag bool) error {
	return a.store.AttributeArticleInteraction(ctx, ledgerModel.InteractionSaveWeb, userID, articleID, nil, flag)
}

// ClickEmail records a click through a digest email's read link. trace
// must match the Impression row's stored click_trace or the call fails
// with ledgerModel.ErrTraceMismatch.
func (a *Attributor) ClickEmail(ctx context.Context, userID int64, articleID, trace string) error {
	return a.store.AttributeArticleInteraction(ctx, ledgerModel.InteractionClickEmail, userID, articleID, &trace, false)
}

// SaveEmail records a save through a digest email's save link. trace
// must match the Impression row's stored save_trace or the call fails
// with ledgerModel.ErrTraceMismatch.
func (a *Attributor) SaveEmail(ctx context.Context, userID int64, articleID, trace string) error {
	return a.store.AttributeArticleInteraction(ctx, ledgerModel.InteractionSaveEmail, userID, articleID, &trace, false)
}
