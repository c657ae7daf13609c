package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

// Service is the authoritative in-memory lead collection. All state is
// process-local and lost on restart. Every mutation runs under a single
// write lock; callers always receive copies, never internal pointers.
type Service struct {
	mu     sync.RWMutex
	leads  map[string]*models.Lead
	keys   map[string]string // dedup key -> lead id
	logger logger.Logger
}

// NewService creates a new lead store
func NewService(log logger.Logger) *Service {
	return &Service{
		leads:  make(map[string]*models.Lead),
		keys:   make(map[string]string),
		logger: log,
	}
}

// dedupKey derives the identity key for a candidate, in precedence order:
// email, then (company, contact), then (company, location). Comparison is
// case-insensitive.
func dedupKey(companyName, contactName, email, location string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	company := strings.ToLower(strings.TrimSpace(companyName))
	contact := strings.ToLower(strings.TrimSpace(contactName))
	loc := strings.ToLower(strings.TrimSpace(location))

	switch {
	case email != "":
		return "email:" + email
	case company != "" && contact != "":
		return "name:" + company + "|" + contact
	case company != "":
		return "loc:" + company + "|" + loc
	}
	return ""
}

// InsertOrMerge upserts a candidate record. If an existing lead matches the
// candidate's dedup key, non-empty candidate fields fill empty fields on the
// existing lead; existing non-empty fields are never overwritten. Returns the
// resulting lead and whether it was newly created.
func (s *Service) InsertOrMerge(input models.LeadInput) (*models.Lead, bool, error) {
	if strings.TrimSpace(input.CompanyName) == "" &&
		strings.TrimSpace(input.ContactName) == "" &&
		strings.TrimSpace(input.Email) == "" {
		return nil, false, domain.NewValidationError("lead needs at least one of company_name, contact_name or email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dedupKey(input.CompanyName, input.ContactName, input.Email, input.Location)
	if key != "" {
		if id, ok := s.keys[key]; ok {
			existing := s.leads[id]
			merged := mergeInto(existing, input)
			if merged {
				existing.UpdatedAt = time.Now().UTC()
			}
			// Merging may have added an email or location, making the lead
			// reachable by additional keys.
			s.indexLead(existing)
			out := copyLead(existing)
			return &out, false, nil
		}
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:          uuid.New().String(),
		CompanyName: strings.TrimSpace(input.CompanyName),
		ContactName: strings.TrimSpace(input.ContactName),
		Title:       strings.TrimSpace(input.Title),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Website:     strings.TrimSpace(input.Website),
		Industry:    strings.TrimSpace(input.Industry),
		Location:    strings.TrimSpace(input.Location),
		Source:      input.Source,
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if lead.Source == "" {
		lead.Source = models.SourceManual
	}

	s.leads[lead.ID] = lead
	s.indexLead(lead)

	s.logger.Debug("lead created", "lead_id", lead.ID, "company", lead.CompanyName, "source", lead.Source)

	out := copyLead(lead)
	return &out, true, nil
}

// indexLead registers every key the lead is reachable by. A lead with an
// email is also indexed by its name and location keys so that later
// candidates lacking the email still merge instead of duplicating.
func (s *Service) indexLead(l *models.Lead) {
	if l.Email != "" {
		s.keys["email:"+strings.ToLower(l.Email)] = l.ID
	}
	company := strings.ToLower(l.CompanyName)
	if company != "" && l.ContactName != "" {
		s.keys["name:"+company+"|"+strings.ToLower(l.ContactName)] = l.ID
	}
	if company != "" {
		s.keys["loc:"+company+"|"+strings.ToLower(l.Location)] = l.ID
	}
}

func (s *Service) unindexLead(l *models.Lead) {
	if l.Email != "" {
		delete(s.keys, "email:"+strings.ToLower(l.Email))
	}
	company := strings.ToLower(l.CompanyName)
	if company != "" && l.ContactName != "" {
		delete(s.keys, "name:"+company+"|"+strings.ToLower(l.ContactName))
	}
	if company != "" {
		delete(s.keys, "loc:"+company+"|"+strings.ToLower(l.Location))
	}
}

// mergeInto copies non-empty candidate fields into empty fields of dst.
// Reports whether anything changed.
func mergeInto(dst *models.Lead, in models.LeadInput) bool {
	changed := false
	fill := func(dstField *string, v string) {
		v = strings.TrimSpace(v)
		if *dstField == "" && v != "" {
			*dstField = v
			changed = true
		}
	}
	fill(&dst.CompanyName, in.CompanyName)
	fill(&dst.ContactName, in.ContactName)
	fill(&dst.Title, in.Title)
	fill(&dst.Phone, in.Phone)
	fill(&dst.Website, in.Website)
	fill(&dst.Industry, in.Industry)
	fill(&dst.Location, in.Location)
	if dst.Email == "" && strings.TrimSpace(in.Email) != "" {
		dst.Email = strings.ToLower(strings.TrimSpace(in.Email))
		changed = true
	}
	return changed
}

// Get returns a copy of the lead with the given id
func (s *Service) Get(id string) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}
	out := copyLead(lead)
	return &out, nil
}

// Update applies a partial update. Score, priority, fit and id are owned by
// the scoring engine and rejected here.
func (s *Service) Update(id string, req models.UpdateLeadRequest) (*models.Lead, error) {
	if req.ID != nil || req.Score != nil || req.Priority != nil || req.Fit != nil {
		return nil, domain.NewValidationError("id, score, priority and fit cannot be set directly")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, domain.NewValidationError("invalid status: " + string(*req.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}

	s.unindexLead(lead)

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&lead.CompanyName, req.CompanyName)
	set(&lead.ContactName, req.ContactName)
	set(&lead.Title, req.Title)
	set(&lead.Phone, req.Phone)
	set(&lead.Website, req.Website)
	set(&lead.Industry, req.Industry)
	set(&lead.Location, req.Location)
	if req.Email != nil {
		lead.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	lead.UpdatedAt = time.Now().UTC()

	s.indexLead(lead)

	out := copyLead(lead)
	return &out, nil
}

// ApplyScore records a scoring result on a lead. Only the scoring engine
// calls this.
func (s *Service) ApplyScore(id string, score int, priority models.LeadPriority, fit models.LeadFit, analysis *models.Analysis) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}

	sc := score
	lead.Score = &sc
	lead.Priority = priority
	lead.Fit = fit
	lead.Analysis = analysis
	lead.UpdatedAt = time.Now().UTC()

	out := copyLead(lead)
	return &out, nil
}

// Delete removes a lead
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return domain.NewNotFoundError("lead")
	}
	s.unindexLead(lead)
	delete(s.leads, id)
	return nil
}

// List returns leads matching the filter, newest first, paginated.
// Requesting a page past the end returns an empty page with the true total.
func (s *Service) List(req models.ListLeadsRequest) (*models.LeadListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 20
	}
	if req.Page < 1 || req.PerPage < 1 {
		return nil, domain.NewValidationError("page and per_page must be positive")
	}

	// Copy matches before releasing the lock; writers mutate the stored
	// structs in place.
	s.mu.RLock()
	matched := make([]models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if matchesFilter(lead, req) {
			matched = append(matched, copyLead(lead))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (req.Page - 1) * req.PerPage
	end := start + req.PerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := matched[start:end]

	totalPages := (total + req.PerPage - 1) / req.PerPage
	return &models.LeadListResponse{
		Data: items,
		Pagination: models.PaginationInfo{
			Page:       req.Page,
			PerPage:    req.PerPage,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1 && total > 0,
		},
	}, nil
}

func matchesFilter(l *models.Lead, req models.ListLeadsRequest) bool {
	if req.Status != "" && string(l.Status) != req.Status {
		return false
	}
	if req.Priority != "" && string(l.Priority) != req.Priority {
		return false
	}
	if req.Industry != "" && !strings.EqualFold(l.Industry, req.Industry) {
		return false
	}
	if req.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(req.Location)) {
		return false
	}
	if req.Search != "" {
		q := strings.ToLower(req.Search)
		if !strings.Contains(strings.ToLower(l.CompanyName), q) &&
			!strings.Contains(strings.ToLower(l.ContactName), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) {
			return false
		}
	}
	return true
}

// BulkSetStatus applies one status to many leads. Unknown ids are reported
// back rather than failing the whole batch.
func (s *Service) BulkSetStatus(req models.BulkStatusRequest) (updated int, missing []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range req.LeadIDs {
		lead, ok := s.leads[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		lead.Status = req.Status
		lead.UpdatedAt = now
		updated++
	}
	return updated, missing
}

// Stats aggregates the current lead set
func (s *Service) Stats() *models.LeadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.LeadStats{
		Total:      len(s.leads),
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}

	scoreSum := 0
	for _, lead := range s.leads {
		stats.ByStatus[string(lead.Status)]++
		if lead.Priority != "" {
			stats.ByPriority[string(lead.Priority)]++
		}
		if lead.Scored() {
			stats.ScoredCount++
			scoreSum += *lead.Score
		}
	}
	if stats.ScoredCount > 0 {
		stats.AverageScore = float64(scoreSum) / float64(stats.ScoredCount)
	}
	return stats
}

// All returns a copy of every lead matching the filter, unpaginated, newest
// first. Used by the export writer.
func (s *Service) All(req models.ListLeadsRequest) []models.Lead {
	s.mu.RLock()
	matched := make([]models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if matchesFilter(lead, req) {
			matched = append(matched, copyLead(lead))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

// copyLead returns a deep copy safe to hand to callers.
func copyLead(l *models.Lead) models.Lead {
	out := *l
	if l.Score != nil {
		sc := *l.Score
		out.Score = &sc
	}
	if l.Analysis != nil {
		a := *l.Analysis
		a.RecommendedProducts = append([]string(nil), l.Analysis.RecommendedProducts...)
		a.TalkingPoints = append([]string(nil), l.Analysis.TalkingPoints...)
		a.NextSteps = append([]string(nil), l.Analysis.NextSteps...)
		a.RiskFactors = append([]string(nil), l.Analysis.RiskFactors...)
		out.Analysis = &a
	}
	return out
}
