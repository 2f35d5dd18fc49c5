package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"catalog-picker/internal/catalog"
	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// HostNotifier hands results back to the embedding host
type HostNotifier interface {
	SendResult(ctx context.Context, sessionID, token string, payload models.SubmissionPayload) error
}

// SubmissionRecorder keeps an audit trail of submissions
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, sessionID, token string, payload models.SubmissionPayload) error
}

// SessionDeps are the collaborators shared by every session
type SessionDeps struct {
	Client             catalog.Client
	Pricing            PricingCache
	Host               HostNotifier
	Recorder           SubmissionRecorder
	PageSize           int
	SearchDebounce     time.Duration
	DefaultDistributor string
}

// Session is the state of one embedded browsing widget: filters, current
// page, selection, queue and inspected details.
type Session struct {
	id       string
	client   catalog.Client
	host     HostNotifier
	recorder SubmissionRecorder
	logger   *zap.Logger

	filters   *FilterState
	pager     *CatalogPager
	selection *SelectionSet
	queue     *Queue
	enricher  *DetailEnricher

	manufacturerSearch *Debouncer
	keywordSearch      *Debouncer

	// background work started by debounced searches runs under ctx
	ctx    context.Context
	cancel context.CancelFunc

	mu                  sync.Mutex
	hostContext         json.RawMessage
	token               string
	defaultDistributor  models.Distributor
	distributor         models.Distributor
	groupByManufacturer bool
	searchTerm          string
	suggestions         []string
	inspecting          string
	details             *models.ProductDetails
	status              *models.Status
}

// NewSession creates a session with its own component instances
func NewSession(id string, deps SessionDeps) *Session {
	pricing := deps.Pricing
	if pricing == nil {
		pricing = NewMemoryPricingCache()
	}
	distributor, ok := models.LookupDistributor(deps.DefaultDistributor)
	if !ok || !distributor.Enabled {
		distributor, _ = models.LookupDistributor(models.DistributorIngram)
	}

	ctx, cancel := context.WithCancel(context.Background())
	queue := NewQueue(pricing)
	pager := NewCatalogPager(deps.Client, pricing, deps.PageSize)

	return &Session{
		id:                 id,
		client:             deps.Client,
		host:               deps.Host,
		recorder:           deps.Recorder,
		logger:             util.Named("session").With(zap.String("session_id", id)),
		filters:            NewFilterState(deps.Client),
		pager:              pager,
		selection:          NewSelectionSet(pager, queue),
		queue:              queue,
		enricher:           NewDetailEnricher(deps.Client, pricing),
		manufacturerSearch: NewDebouncer(deps.SearchDebounce),
		keywordSearch:      NewDebouncer(deps.SearchDebounce),
		ctx:                ctx,
		cancel:             cancel,
		defaultDistributor: distributor,
		distributor:        distributor,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Close stops pending debounced work
func (s *Session) Close() {
	s.manufacturerSearch.Cancel()
	s.keywordSearch.Cancel()
	s.cancel()
}

// HandleStarted begins a new host lifecycle, discarding all previous state
func (s *Session) HandleStarted(hostContext json.RawMessage) {
	s.manufacturerSearch.Cancel()
	s.keywordSearch.Cancel()
	s.filters.SetManufacturer("")
	s.pager.Reset()
	s.selection.Clear()
	s.queue.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostContext = hostContext
	s.token = ""
	s.distributor = s.defaultDistributor
	s.groupByManufacturer = false
	s.searchTerm = ""
	s.suggestions = nil
	s.inspecting = ""
	s.details = nil
	s.status = nil
	s.logger.Info("Host session started")
}

// HandleReady stores the correlation token the result must be sent with
func (s *Session) HandleReady(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.logger.Info("Host ready", zap.Bool("has_token", token != ""))
}

// Connected reports whether the host has signalled readiness
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// HostContext returns the opaque context delivered at startup
func (s *Session) HostContext() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostContext
}

func (s *Session) setStatus(level models.StatusLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &models.Status{Level: level, Message: msg}
}

// Status returns the latest user-visible status, or nil
func (s *Session) Status() *models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil
	}
	st := *s.status
	return &st
}

// SearchManufacturers schedules a debounced manufacturer search. Terms
// shorter than the catalog minimum clear the suggestions instead.
func (s *Session) SearchManufacturers(term string) {
	term = strings.TrimSpace(term)

	s.mu.Lock()
	s.searchTerm = term
	if len(term) < catalog.MinSearchLength {
		s.suggestions = nil
		s.mu.Unlock()
		s.manufacturerSearch.Cancel()
		return
	}
	s.mu.Unlock()

	s.manufacturerSearch.Schedule(func() {
		if err := s.runManufacturerSearch(s.ctx, term); err != nil {
			s.logger.Warn("Manufacturer search failed", zap.String("term", term), zap.Error(err))
		}
	})
}

// runManufacturerSearch searches immediately. The result is applied only if
// term is still the latest search term when the response arrives.
func (s *Session) runManufacturerSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()

	names, err := s.client.SearchManufacturers(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.searchTerm != term {
		util.StaleResponsesTotal.WithLabelValues("search_manufacturers").Inc()
		return nil
	}
	if err != nil {
		s.status = &models.Status{Level: models.StatusError, Message: "Manufacturer search failed."}
		return fmt.Errorf("manufacturer search failed: %w", err)
	}
	s.suggestions = names
	return nil
}

// ManufacturerSuggestions returns the results of the latest applied search
func (s *Session) ManufacturerSuggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// SelectManufacturer sets the manufacturer and clears everything downstream
func (s *Session) SelectManufacturer(name string) {
	s.manufacturerSearch.Cancel()
	s.keywordSearch.Cancel()
	s.filters.SetManufacturer(name)
	s.invalidateProducts()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = nil
	s.searchTerm = ""
}

// SetFilter sets category, subcategory, type or keyword
func (s *Session) SetFilter(dim models.Dimension, value string) error {
	if dim == models.DimensionKeyword {
		s.keywordSearch.Cancel()
	}
	if err := s.filters.SetDimension(dim, value); err != nil {
		return err
	}
	s.invalidateProducts()
	return nil
}

// SearchKeyword sets the keyword filter and schedules a debounced load of
// page 1. The load only fires if the keyword is still current.
func (s *Session) SearchKeyword(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if err := s.filters.SetDimension(models.DimensionKeyword, keyword); err != nil {
		return err
	}
	s.invalidateProducts()

	s.keywordSearch.Schedule(func() {
		if s.filters.Selection().Keyword != keyword {
			util.StaleResponsesTotal.WithLabelValues("keyword_search").Inc()
			return
		}
		if err := s.LoadPage(s.ctx, 1); err != nil {
			s.logger.Warn("Keyword search failed", zap.String("keyword", keyword), zap.Error(err))
		}
	})
	return nil
}

func (s *Session) invalidateProducts() {
	s.pager.Reset()
	s.selection.Clear()
}

// Filter returns the active filter
func (s *Session) Filter() models.FilterSelection {
	return s.filters.Selection()
}

// LoadDimensionOptions loads category or subcategory options if needed and
// returns the current list.
func (s *Session) LoadDimensionOptions(ctx context.Context, dim models.Dimension) ([]string, error) {
	if err := s.filters.LoadDimensionOptions(ctx, dim); err != nil {
		if models.IsTransport(err) {
			s.setStatus(models.StatusError, fmt.Sprintf("Failed to load %s options.", dim))
		}
		return s.filters.Options(dim), err
	}
	return s.filters.Options(dim), nil
}

// LoadPage loads page n under the active filter
func (s *Session) LoadPage(ctx context.Context, n int) error {
	filter := s.filters.Selection()
	if !filter.HasManufacturer() {
		return models.NewValidationError("manufacturer", "select a manufacturer first")
	}
	s.selection.Clear()

	err := s.pager.LoadPage(ctx, n, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = s.pager.Status()
	return err
}

// NextPage loads the page after the current one
func (s *Session) NextPage(ctx context.Context) error {
	if !s.pager.HasNext() {
		return models.NewValidationError("page", "already on the last page")
	}
	return s.LoadPage(ctx, s.pager.Page()+1)
}

// PreviousPage loads the page before the current one
func (s *Session) PreviousPage(ctx context.Context) error {
	if !s.pager.HasPrevious() {
		return models.NewValidationError("page", "already on the first page")
	}
	return s.LoadPage(ctx, s.pager.Page()-1)
}

// Toggle selects or deselects one product on the current page
func (s *Session) Toggle(identity string, selected bool) bool {
	return s.selection.Toggle(identity, selected)
}

// ToggleAll selects or deselects every selectable product on the page
func (s *Session) ToggleAll(selected bool) int {
	return s.selection.ToggleAll(selected)
}

// CommitSelection moves the selection into the queue and returns how many
// products were actually added.
func (s *Session) CommitSelection(ctx context.Context) (int, error) {
	if !s.selection.CanCommit() {
		return 0, models.NewValidationError("selection", "select at least one product")
	}

	items := s.selection.Items()
	added := s.queue.Commit(ctx, items)
	s.selection.Clear()

	msg := fmt.Sprintf("Added %d product(s) to the queue.", added)
	if skipped := len(items) - added; skipped > 0 {
		msg = fmt.Sprintf("Added %d product(s) to the queue, %d already queued.", added, skipped)
	}
	s.setStatus(models.StatusSuccess, msg)
	s.logger.Info("Selection committed", zap.Int("selected", len(items)), zap.Int("added", added))
	return added, nil
}

// RemoveFromQueue removes one queued product
func (s *Session) RemoveFromQueue(identity string) bool {
	return s.queue.Remove(identity)
}

// ClearQueue empties the queue
func (s *Session) ClearQueue() {
	s.queue.Clear()
}

// Queue returns the queued entries in order
func (s *Session) Queue() []models.QueueEntry {
	return s.queue.Entries()
}

// QueueGroups returns the queue grouped by manufacturer
func (s *Session) QueueGroups() []models.QueueGroup {
	return s.queue.Groups(s.filters.Selection().Manufacturer)
}

// ReorderQueue applies a new flat order
func (s *Session) ReorderQueue(identities []string) error {
	return s.queue.Reorder(identities)
}

// ReorderGroups applies a new manufacturer group order
func (s *Session) ReorderGroups(manufacturers []string) error {
	return s.queue.ReorderByGroupOrder(manufacturers, s.filters.Selection().Manufacturer)
}

// SetGroupByManufacturer toggles the grouped queue projection
func (s *Session) SetGroupByManufacturer(grouped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupByManufacturer = grouped
}

// InspectProduct fetches and merges pricing and details for a product that
// is on the current page or in the queue. A result arriving after the
// details were closed or another product was inspected is returned but not
// kept as the session's current details.
func (s *Session) InspectProduct(ctx context.Context, identity string) (models.ProductDetails, error) {
	prod, ok := s.pager.Product(identity)
	if !ok {
		for _, e := range s.queue.Entries() {
			if e.Identity() == identity {
				prod, ok = e.Product, true
				break
			}
		}
	}
	if !ok {
		return models.ProductDetails{}, models.NewValidationError("identity", fmt.Sprintf("product %q is not displayed", identity))
	}

	s.mu.Lock()
	s.inspecting = identity
	s.details = nil
	s.mu.Unlock()

	details := s.enricher.GetDetails(ctx, prod)
	if details.Pricing != nil {
		s.queue.UpdatePricing(identity, *details.Pricing)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inspecting == identity {
		s.details = &details
	} else {
		util.StaleResponsesTotal.WithLabelValues("product_details").Inc()
	}
	return details, nil
}

// CloseDetails stops showing the inspected product
func (s *Session) CloseDetails() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspecting = ""
	s.details = nil
}

// SelectDistributor switches the active distributor. Disabled distributors
// are not selected; an informational status explains why.
func (s *Session) SelectDistributor(id string) error {
	d, ok := models.LookupDistributor(id)
	if !ok {
		return models.NewValidationError("distributor", fmt.Sprintf("unknown distributor %q", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !d.Enabled {
		s.status = &models.Status{Level: models.StatusInfo, Message: fmt.Sprintf("%s is not available yet.", d.Name)}
		return nil
	}
	s.distributor = d
	return nil
}

// Distributor returns the active distributor
func (s *Session) Distributor() models.Distributor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distributor
}

// Submit hands the queue to the host. The queue is kept; the host ends the
// lifecycle.
func (s *Session) Submit(ctx context.Context) (*models.SubmissionPayload, error) {
	ctx, span := util.StartSpan(ctx, "Session.Submit", "session_id", s.id)
	defer span.End()

	entries := s.queue.Entries()
	if len(entries) == 0 {
		return nil, models.NewValidationError("queue", "add at least one product before submitting")
	}

	s.mu.Lock()
	token := s.token
	distributor := s.distributor
	s.mu.Unlock()
	if token == "" {
		return nil, models.NewValidationError("host", "not connected to the host")
	}

	payload := models.SubmissionPayload{
		DistributorID: distributor.ID,
		Products:      BuildSubmission(entries, s.filters.Selection(), distributor),
	}

	if err := s.sendResult(ctx, token, payload); err != nil {
		util.RecordError(span, err)
		s.setStatus(models.StatusError, "Failed to submit products.")
		return nil, err
	}

	util.SubmissionsTotal.WithLabelValues("submitted").Inc()
	util.SubmissionSize.Observe(float64(len(payload.Products)))
	s.setStatus(models.StatusSuccess, fmt.Sprintf("Submitted %d product(s).", len(payload.Products)))
	s.logger.Info("Queue submitted", zap.Int("products", len(payload.Products)), zap.String("distributor", distributor.ID))
	return &payload, nil
}

// Cancel clears the queue and tells the host the widget was cancelled
func (s *Session) Cancel(ctx context.Context) error {
	s.queue.Clear()
	s.selection.Clear()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	util.SubmissionsTotal.WithLabelValues("cancelled").Inc()
	if token == "" {
		return nil
	}
	return s.sendResult(ctx, token, models.SubmissionPayload{Cancelled: true, Products: []models.SubmissionRecord{}})
}

func (s *Session) sendResult(ctx context.Context, token string, payload models.SubmissionPayload) error {
	if s.host == nil {
		return fmt.Errorf("no host channel configured")
	}
	if err := s.host.SendResult(ctx, s.id, token, payload); err != nil {
		return fmt.Errorf("failed to send result to host: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordSubmission(ctx, s.id, token, payload); err != nil {
			s.logger.Error("Failed to record submission", zap.Error(err))
		}
	}
	return nil
}
