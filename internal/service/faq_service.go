package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"

	"github.com/openlive/faq-chatbot/internal/matcher"
	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/textutil"
)

// ---- Repository contract ---------------------------------------------------

// CorpusRepository loads and persists the canonical FAQ corpus.
type CorpusRepository interface {
	Load(ctx context.Context) (models.Corpus, error)
	Save(ctx context.Context, corpus models.Corpus) error
}

// ---- Service interface + implementation ------------------------------------

// SearchOptions tunes a ranked search. Zero values fall back to the service
// defaults.
type SearchOptions struct {
	Threshold *float64
	Limit     int
}

// FAQService owns the corpus and its search index.
type FAQService interface {
	ListCategories(ctx context.Context) []models.CategorySummary
	ListQuestions(ctx context.Context, categoryID string, skip, limit int) ([]models.QuestionSummary, error)
	GetQuestionDetail(ctx context.Context, id string) (models.QuestionDetail, error)
	Search(ctx context.Context, query string, opts SearchOptions) []models.SearchResult
	FindAnswer(ctx context.Context, query string) models.MatchResult
	FrequentQuestions(ctx context.Context, limit int) []models.Suggestion

	AddQuestion(ctx context.Context, categoryID string, in models.QuestionInput) (models.QuestionDetail, error)
	UpdateQuestion(ctx context.Context, id string, patch models.QuestionPatch) (models.QuestionDetail, error)
	Reload(ctx context.Context) error

	Metadata() models.Metadata
	Snapshot() models.Corpus
}

// FAQOptions configures NewFAQService.
type FAQOptions struct {
	// MatchThreshold defaults to matcher.DefaultThreshold when nil.
	MatchThreshold  *float64
	SearchThreshold float64
	SearchLimit     int
	Now             func() time.Time
}

const (
	defaultSearchThreshold = 0.2
	defaultSearchLimit     = 5
	defaultPageSize        = 50
	answerPreviewLength    = 100
)

type location struct {
	cat, q int
}

type faqService struct {
	repo CorpusRepository
	opts FAQOptions

	mu      sync.RWMutex
	corpus  models.Corpus
	matcher *matcher.Matcher
	byID    map[string]location
	rev     uint64

	// mutateMu serializes Reload, AddQuestion and UpdateQuestion so a
	// reload cannot install a corpus loaded before a concurrent edit.
	mutateMu sync.Mutex

	persistMu sync.Mutex
	savedRev  uint64
}

// NewFAQService loads the corpus through repo and builds the index. When the
// corpus cannot be loaded the service still starts with an empty corpus and
// the returned error wraps ErrDataUnavailable.
func NewFAQService(ctx context.Context, repo CorpusRepository, opts FAQOptions) (FAQService, error) {
	if opts.MatchThreshold == nil {
		threshold := matcher.DefaultThreshold
		opts.MatchThreshold = &threshold
	}
	if opts.SearchThreshold <= 0 {
		opts.SearchThreshold = defaultSearchThreshold
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &faqService{repo: repo, opts: opts}
	s.install(models.Corpus{})

	if err := s.Reload(ctx); err != nil {
		log.Printf("[FAQ Service] Starting with an empty corpus: %v", err)
		return s, err
	}
	return s, nil
}

// install swaps in corpus and a freshly built index. Callers hold s.mu.
func (s *faqService) install(corpus models.Corpus) {
	byID := make(map[string]location, corpus.QuestionCount())
	for ci, cat := range corpus.Categories {
		for qi, q := range cat.Questions {
			byID[q.ID] = location{cat: ci, q: qi}
		}
	}
	s.corpus = corpus
	s.byID = byID
	s.matcher = matcher.New(corpus, matcher.WithThreshold(*s.opts.MatchThreshold))
	s.rev++
}

// ListCategories returns every category with its question count.
func (s *faqService) ListCategories(_ context.Context) []models.CategorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CategorySummary, len(s.corpus.Categories))
	for i, cat := range s.corpus.Categories {
		out[i] = models.CategorySummary{
			ID:            cat.ID,
			Title:         cat.Title,
			QuestionCount: len(cat.Questions),
		}
	}
	return out
}

// ListQuestions pages through the questions of one category.
func (s *faqService) ListQuestions(_ context.Context, categoryID string, skip, limit int) ([]models.QuestionSummary, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ci := s.categoryIndex(categoryID)
	if ci < 0 {
		return nil, fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}

	questions := s.corpus.Categories[ci].Questions
	out := []models.QuestionSummary{}
	for i := skip; i < len(questions) && len(out) < limit; i++ {
		out = append(out, models.QuestionSummary{
			ID:          questions[i].ID,
			Question:    questions[i].Question,
			LastUpdated: questions[i].LastUpdated,
		})
	}
	return out, nil
}

// GetQuestionDetail returns the question with its category and counts the
// view in the question's popularity.
func (s *faqService) GetQuestionDetail(_ context.Context, id string) (models.QuestionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.byID[id]
	if !ok {
		return models.QuestionDetail{}, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	s.corpus.Categories[loc.cat].Questions[loc.q].Popularity++
	return s.detailAt(loc), nil
}

// Search ranks the corpus against query.
func (s *faqService) Search(_ context.Context, query string, opts SearchOptions) []models.SearchResult {
	threshold := s.opts.SearchThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	limit := s.opts.SearchLimit
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := s.matcher.Rank(query, threshold, limit)
	out := make([]models.SearchResult, len(hits))
	for i, h := range hits {
		out[i] = models.SearchResult{
			ID:            h.Question.ID,
			Question:      h.Question.Question,
			Category:      h.Question.CategoryTitle,
			CategoryID:    h.Question.CategoryID,
			Score:         h.Score,
			AnswerPreview: textutil.Truncate(h.Question.Answer, answerPreviewLength),
		}
	}
	return out
}

// FindAnswer returns the best confident match for query, or suggestions.
func (s *faqService) FindAnswer(_ context.Context, query string) models.MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := s.matcher.FindBestMatch(query)
	out := models.MatchResult{
		Success:     res.Success,
		Score:       res.Score,
		Threshold:   res.Threshold,
		Message:     res.Message,
		Suggestions: res.Suggestions,
		Timestamp:   s.opts.Now().UTC(),
	}
	if res.Success && res.Match != nil {
		if loc, ok := s.byID[res.Match.ID]; ok {
			detail := s.detailAt(loc)
			out.Match = &detail
		}
	}
	return out
}

// FrequentQuestions lists questions flagged as frequent.
func (s *faqService) FrequentQuestions(_ context.Context, limit int) []models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frequent := s.matcher.Frequent(limit)
	out := make([]models.Suggestion, len(frequent))
	for i, q := range frequent {
		out[i] = models.Suggestion{
			ID:       q.ID,
			Question: q.Question,
			Category: q.CategoryTitle,
			Keywords: q.Keywords,
		}
	}
	return out
}

// AddQuestion appends a question to a category and rebuilds the index before
// returning.
func (s *faqService) AddQuestion(ctx context.Context, categoryID string, in models.QuestionInput) (models.QuestionDetail, error) {
	text := strings.TrimSpace(in.Question)
	if text == "" {
		return models.QuestionDetail{}, fmt.Errorf("question text is required: %w", ErrInvalidInput)
	}

	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	s.mu.Lock()
	ci := s.categoryIndex(categoryID)
	if ci < 0 {
		s.mu.Unlock()
		return models.QuestionDetail{}, fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}
	if limit := s.corpus.Metadata.MaxQuestions; limit > 0 && s.corpus.QuestionCount() >= limit {
		s.mu.Unlock()
		return models.QuestionDetail{}, fmt.Errorf("%d questions: %w", limit, ErrCorpusFull)
	}

	now := s.opts.Now()
	id := strings.TrimSpace(in.ID)
	if id != "" {
		if _, exists := s.byID[id]; exists {
			s.mu.Unlock()
			return models.QuestionDetail{}, fmt.Errorf("question %q: %w", id, ErrDuplicateID)
		}
	} else {
		id = s.generateID(categoryID, now)
	}

	q := models.Question{
		ID:          id,
		Question:    text,
		Answer:      in.Answer,
		Keywords:    nonNil(in.Keywords),
		Related:     nonNil(in.Related),
		LastUpdated: now.Format(time.DateOnly),
		IsFrequent:  in.IsFrequent,
	}
	s.warnDangling(q)

	corpus := s.corpus
	corpus.Categories[ci].Questions = append(corpus.Categories[ci].Questions, q)
	corpus.Metadata = bumpMetadata(corpus.Metadata, now)
	s.install(corpus)

	detail := s.detailAt(s.byID[id])
	snapshot, rev := s.corpus.Clone(), s.rev
	s.mu.Unlock()

	log.Printf("[FAQ Service] Added question %s to category %s", id, categoryID)
	s.persist(ctx, snapshot, rev)
	return detail, nil
}

// UpdateQuestion applies patch to an existing question and rebuilds the index
// before returning.
func (s *faqService) UpdateQuestion(ctx context.Context, id string, patch models.QuestionPatch) (models.QuestionDetail, error) {
	if patch.Question != nil && strings.TrimSpace(*patch.Question) == "" {
		return models.QuestionDetail{}, fmt.Errorf("question text cannot be blank: %w", ErrInvalidInput)
	}

	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	s.mu.Lock()
	loc, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return models.QuestionDetail{}, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}

	now := s.opts.Now()
	corpus := s.corpus
	q := &corpus.Categories[loc.cat].Questions[loc.q]
	if patch.Question != nil {
		q.Question = strings.TrimSpace(*patch.Question)
	}
	if patch.Answer != nil {
		q.Answer = *patch.Answer
	}
	if patch.Keywords != nil {
		q.Keywords = nonNil(*patch.Keywords)
	}
	if patch.Related != nil {
		q.Related = nonNil(*patch.Related)
	}
	if patch.IsFrequent != nil {
		q.IsFrequent = *patch.IsFrequent
	}
	q.LastUpdated = now.Format(time.DateOnly)
	s.warnDangling(*q)

	corpus.Metadata = bumpMetadata(corpus.Metadata, now)
	s.install(corpus)

	detail := s.detailAt(s.byID[id])
	snapshot, rev := s.corpus.Clone(), s.rev
	s.mu.Unlock()

	log.Printf("[FAQ Service] Updated question %s", id)
	s.persist(ctx, snapshot, rev)
	return detail, nil
}

// Reload replaces the corpus with the repository's current content. On
// failure the current corpus stays in place. Popularity never goes down
// across a reload.
func (s *faqService) Reload(ctx context.Context) error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	corpus, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w: %w", ErrDataUnavailable, err)
	}

	report := ValidateCorpus(corpus)
	for _, w := range report.Warnings {
		log.Printf("[FAQ Service] Corpus warning: %s", w)
	}
	if !report.Valid() {
		for _, e := range report.Errors {
			log.Printf("[FAQ Service] Corpus error: %s", e)
		}
		return fmt.Errorf("corpus has %d validation errors (first: %s): %w",
			len(report.Errors), report.Errors[0], ErrDataUnavailable)
	}

	s.mu.Lock()
	for ci := range corpus.Categories {
		for qi := range corpus.Categories[ci].Questions {
			q := &corpus.Categories[ci].Questions[qi]
			if loc, ok := s.byID[q.ID]; ok {
				q.Popularity = max(q.Popularity, s.corpus.Categories[loc.cat].Questions[loc.q].Popularity)
			}
		}
	}
	s.install(corpus)
	n := len(s.matcher.Index())
	s.mu.Unlock()

	log.Printf("[FAQ Service] Loaded %d FAQ questions in %d categories", n, len(corpus.Categories))
	return nil
}

// Metadata returns the current corpus metadata.
func (s *faqService) Metadata() models.Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Clone().Metadata
}

// Snapshot returns a deep copy of the corpus.
func (s *faqService) Snapshot() models.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Clone()
}

// ---- Helpers ---------------------------------------------------------------

func (s *faqService) categoryIndex(id string) int {
	for i, cat := range s.corpus.Categories {
		if cat.ID == id {
			return i
		}
	}
	return -1
}

func (s *faqService) detailAt(loc location) models.QuestionDetail {
	cat := s.corpus.Categories[loc.cat]
	return models.QuestionDetail{
		Question: cat.Questions[loc.q].Clone(),
		Category: models.CategoryRef{ID: cat.ID, Title: cat.Title},
	}
}

// generateID derives "<category>-<unix millis>", stepping forward on collision.
func (s *faqService) generateID(categoryID string, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := categoryID + "-" + strconv.FormatInt(ms, 10)
		if _, exists := s.byID[id]; !exists {
			return id
		}
		ms++
	}
}

func (s *faqService) warnDangling(q models.Question) {
	for _, rel := range q.Related {
		if _, ok := s.byID[rel]; !ok && rel != q.ID {
			log.Printf("[FAQ Service] Question %s references unknown related id %s", q.ID, rel)
		}
	}
}

// persist saves snapshot unless a newer revision has already been saved.
// Failures are logged: the in-memory corpus stays authoritative.
func (s *faqService) persist(ctx context.Context, snapshot models.Corpus, rev uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if rev <= s.savedRev {
		return
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		log.Printf("[FAQ Service] Failed to persist corpus: %v", err)
		return
	}
	s.savedRev = rev
}

// bumpMetadata increments the patch version and stamps lastUpdated.
func bumpMetadata(meta models.Metadata, now time.Time) models.Metadata {
	meta.LastUpdated = now.UTC().Format(time.RFC3339)
	meta.Version = nextPatch(meta.Version)
	return meta
}

// nextPatch returns version with its patch number incremented. Invalid or
// empty versions restart at 1.0.0.
func nextPatch(version string) string {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return "1.0.0"
	}
	core := strings.TrimPrefix(semver.Canonical(v), "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	patch, _ := strconv.Atoi(parts[2])
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}

func nonNil(s []string) []string {
	return append(make([]string, 0, len(s)), s...)
}
