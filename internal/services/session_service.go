package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/pzkpfw44/Pulse360-sub000/internal/aireview"
	"github.com/pzkpfw44/Pulse360-sub000/internal/events"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

// GateState is the submission gate's position for one assessor session.
//
//	Editing -> Checking -> Reviewed -> {Blocked, Submitting} -> Submitted
//
// Any edit while Reviewed or Blocked drops the session back to Editing and
// discards the active review.
type GateState string

const (
	StateEditing    GateState = "editing"
	StateChecking   GateState = "checking"
	StateReviewed   GateState = "reviewed"
	StateBlocked    GateState = "blocked"
	StateSubmitting GateState = "submitting"
	StateSubmitted  GateState = "submitted"
)

// SessionView is what the assessor form renders: the question set, the
// current responses and, after a check, the active review.
type SessionView struct {
	CampaignID    uint                        `json:"campaign_id"`
	CampaignTitle string                      `json:"campaign_title"`
	TargetName    string                      `json:"target_name"`
	Relation      models.AssessorRelation     `json:"relation"`
	Questions     []models.Question           `json:"questions"`
	Responses     map[string]models.Response  `json:"responses"`
	State         GateState                   `json:"state"`
	Review        *aireview.FormattedFeedback `json:"review,omitempty"`
}

// SubmitResult reports a completed submission.
type SubmitResult struct {
	SubmissionID uint           `json:"submission_id"`
	Bypassed     bool           `json:"bypassed"`
	Quality      models.Quality `json:"quality,omitempty"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}

// SessionService owns the assessor-facing workflow: opening a feedback form
// by token, recording responses, running the quality check and gating the
// final submission.
type SessionService interface {
	Open(ctx context.Context, token string) (*SessionView, error)
	SetResponses(ctx context.Context, token string, responses []models.Response) (*SessionView, error)
	SaveDraft(ctx context.Context, token string) error
	CheckWithAI(ctx context.Context, token string) (*aireview.FormattedFeedback, error)
	Submit(ctx context.Context, token string) (*SubmitResult, error)
	ConfirmBypass(ctx context.Context, token string) (*SubmitResult, error)
}

// assessorSession is the in-memory response store plus gate position for one
// token. Sessions are ephemeral; drafts persist them across restarts.
type assessorSession struct {
	mu sync.Mutex

	submissionID     uint
	campaignID       uint
	campaignTitle    string
	targetEmployeeID uint
	targetName       string
	relation         models.AssessorRelation
	questions        []models.Question

	responses map[string]models.Response
	state     GateState
	review    *aireview.FormattedFeedback
	lastAI    *models.AIEvaluationResult

	checkInFlight  bool
	submitInFlight bool
}

type sessionService struct {
	repo       repositories.Repository
	evaluator  EvaluatorService
	validation *ValidationService
	validator  *utils.Validator
	publisher  events.EventPublisher
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*assessorSession
}

func NewSessionService(
	repo repositories.Repository,
	evaluator EvaluatorService,
	validation *ValidationService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		repo:       repo,
		evaluator:  evaluator,
		validation: validation,
		validator:  validator,
		publisher:  publisher,
		logger:     logger,
		sessions:   make(map[string]*assessorSession),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) Open(ctx context.Context, token string) (*SessionView, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// session returns the live session for token, loading it from the database
// on first access.
func (s *sessionService) session(ctx context.Context, token string) (*assessorSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	sess, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[token]; ok {
		return existing, nil
	}
	s.sessions[token] = sess
	return sess, nil
}

func (s *sessionService) loadSession(ctx context.Context, token string) (*assessorSession, error) {
	accessToken, err := s.repo.Token().GetByTokenWithSubmission(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if accessToken.Expired() {
		return nil, ErrTokenExpired
	}

	submission := &accessToken.Submission
	if submission.Status == models.SubmissionCompleted {
		return nil, ErrAlreadySubmitted
	}

	campaign, err := s.repo.Campaign().GetByIDWithDetails(ctx, submission.CampaignID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if campaign.Status != models.CampaignActive {
		return nil, ErrCampaignNotActive
	}
	if campaign.Deadline != nil && time.Now().After(*campaign.Deadline) {
		return nil, ErrCampaignPastDeadline
	}

	questions, err := campaign.QuestionSet()
	if err != nil {
		return nil, fmt.Errorf("failed to decode campaign questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrCampaignNoQuestions
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})

	responses := make(map[string]models.Response)
	if draft, err := submission.Draft(); err != nil {
		s.logger.Warn("Discarding unreadable draft", "submission_id", submission.ID, "error", err)
	} else {
		for _, r := range draft {
			responses[r.QuestionID] = r
		}
	}

	if err := s.repo.Token().IncrementUse(ctx, token); err != nil {
		s.logger.Warn("Failed to record token use", "error", err)
	}

	s.logger.Info("Feedback session opened",
		"submission_id", submission.ID,
		"campaign_id", campaign.ID,
		"relation", accessToken.Relation)

	return &assessorSession{
		submissionID:     submission.ID,
		campaignID:       campaign.ID,
		campaignTitle:    campaign.Title,
		targetEmployeeID: campaign.TargetEmployeeID,
		targetName:       campaign.TargetEmployee.FullName,
		relation:         accessToken.Relation,
		questions:        questions,
		responses:        responses,
		state:            StateEditing,
	}, nil
}

// ===== RESPONSE STORE =====

func (s *sessionService) SetResponses(ctx context.Context, token string, updates []models.Response) (*SessionView, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.guardMutable(); err != nil {
		return nil, err
	}

	known := make(map[string]models.Question, len(sess.questions))
	for _, q := range sess.questions {
		known[q.ID] = q
	}

	for _, r := range updates {
		q, ok := known[r.QuestionID]
		if !ok {
			return nil, NewBusinessRuleError("unknown_question",
				"response refers to a question outside this campaign",
				map[string]interface{}{"question_id": r.QuestionID})
		}
		if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
			return nil, NewBusinessRuleError("rating_range",
				"ratings must be between 1 and 5",
				map[string]interface{}{"question_id": r.QuestionID, "rating": *r.Rating})
		}
		if q.Type == models.QuestionOpenEnded {
			r.Rating = nil
		}
		sess.responses[r.QuestionID] = r
	}

	// Any edit invalidates the active review.
	if sess.state == StateReviewed || sess.state == StateBlocked {
		sess.state = StateEditing
		sess.review = nil
		sess.lastAI = nil
	}

	return sess.view(), nil
}

func (s *sessionService) SaveDraft(ctx context.Context, token string) error {
	sess, err := s.session(ctx, token)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	draft := sess.orderedResponses()
	submissionID := sess.submissionID
	sess.mu.Unlock()

	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to load submission: %w", err)
	}
	if submission.Status == models.SubmissionCompleted {
		return ErrAlreadySubmitted
	}

	now := time.Now()
	submission.DraftResponses = datatypes.JSON(raw)
	submission.LastSavedAt = &now
	started := submission.Status == models.SubmissionPending
	if started {
		submission.Status = models.SubmissionStarted
	}

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	if started {
		s.publish(ctx, events.NewFeedbackEvent(events.EventFeedbackStarted, events.FeedbackSubmittedEvent{
			SubmissionID:  submission.ID,
			CampaignID:    submission.CampaignID,
			AssessorEmail: submission.AssessorEmail,
		}))
	}

	s.logger.Debug("Draft saved", "submission_id", submission.ID, "responses", len(draft))
	return nil
}

// ===== QUALITY CHECK =====

func (s *sessionService) CheckWithAI(ctx context.Context, token string) (*aireview.FormattedFeedback, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if err := sess.guardMutable(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	result := s.validation.ValidateResponses(sess.questions, sess.responses)
	if !result.Valid {
		sess.mu.Unlock()
		return nil, NewFieldErrors(result.Errors)
	}

	req := &EvaluateRequest{
		Responses:        sess.evaluationResponses(),
		AssessorRelation: sess.relation,
		TargetEmployeeID: sess.targetEmployeeID,
	}
	if err := s.validator.Validate(req); err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	sess.checkInFlight = true
	sess.state = StateChecking
	sess.mu.Unlock()

	// The evaluator substitutes a synthetic "error" result for remote
	// failures, so an error here means the request itself was broken.
	ai, err := s.evaluator.Evaluate(ctx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.checkInFlight = false

	if err != nil {
		sess.state = StateEditing
		return nil, fmt.Errorf("quality check failed: %w", err)
	}

	formatted := aireview.Format(*ai, req.Responses)
	sess.lastAI = ai
	sess.review = &formatted
	sess.state = StateReviewed

	s.logger.Info("Quality check completed",
		"submission_id", sess.submissionID,
		"quality", formatted.Quality,
		"used_ai", ai.AnalysisDetails.UsedAI)

	return &formatted, nil
}

// ===== SUBMISSION GATE =====

func (s *sessionService) Submit(ctx context.Context, token string) (*SubmitResult, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if err := sess.guardMutable(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	result := s.validation.ValidateResponses(sess.questions, sess.responses)
	if !result.Valid {
		sess.mu.Unlock()
		return nil, NewFieldErrors(result.Errors)
	}

	// No check run, or a clean verdict: the gate opens without bypass. Any
	// other verdict blocks until the assessor explicitly confirms.
	if sess.lastAI != nil && sess.lastAI.Quality != models.QualityGood {
		sess.state = StateBlocked
		sess.mu.Unlock()
		return nil, ErrBypassRequired
	}

	return s.finalize(ctx, token, sess, false)
}

func (s *sessionService) ConfirmBypass(ctx context.Context, token string) (*SubmitResult, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if err := sess.guardMutable(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	if sess.state != StateBlocked {
		sess.mu.Unlock()
		return nil, ErrNothingToBypass
	}

	return s.finalize(ctx, token, sess, true)
}

// finalize persists the submission record. Called with sess.mu held; the
// lock is released during database I/O and the gate rolls back to its prior
// state if persistence fails.
func (s *sessionService) finalize(ctx context.Context, token string, sess *assessorSession, bypassed bool) (*SubmitResult, error) {
	priorState := sess.state
	sess.state = StateSubmitting
	sess.submitInFlight = true

	final := sess.orderedResponses()
	lastAI := sess.lastAI
	submissionID := sess.submissionID
	sess.mu.Unlock()

	rollback := func() {
		sess.mu.Lock()
		sess.state = priorState
		sess.submitInFlight = false
		sess.mu.Unlock()
	}

	rawResponses, err := json.Marshal(final)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to encode responses: %w", err)
	}

	var rawAI datatypes.JSON
	if lastAI != nil {
		encoded, err := json.Marshal(lastAI)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("failed to encode evaluation result: %w", err)
		}
		rawAI = datatypes.JSON(encoded)
	}

	now := time.Now()
	var submission *models.Submission

	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		submission, err = tx.Submission().GetByID(ctx, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if submission.Status == models.SubmissionCompleted {
			return ErrAlreadySubmitted
		}

		submission.Responses = datatypes.JSON(rawResponses)
		submission.AIEvaluationResults = rawAI
		submission.BypassedAIRecommendations = bypassed
		submission.Status = models.SubmissionCompleted
		submission.SubmittedAt = &now

		return tx.Submission().Update(ctx, submission)
	})
	if err != nil {
		rollback()
		return nil, err
	}

	sess.mu.Lock()
	sess.state = StateSubmitted
	sess.submitInFlight = false
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	var quality models.Quality
	if lastAI != nil {
		quality = lastAI.Quality
	}

	s.publish(ctx, events.NewFeedbackEvent(events.EventFeedbackSubmitted, events.FeedbackSubmittedEvent{
		SubmissionID:  submission.ID,
		CampaignID:    submission.CampaignID,
		AssessorEmail: submission.AssessorEmail,
		SubmittedAt:   now,
		Bypassed:      bypassed,
		AIQuality:     quality,
	}))

	s.logger.Info("Feedback submitted",
		"submission_id", submission.ID,
		"campaign_id", submission.CampaignID,
		"bypassed", bypassed,
		"quality", quality)

	return &SubmitResult{
		SubmissionID: submission.ID,
		Bypassed:     bypassed,
		Quality:      quality,
		SubmittedAt:  now,
	}, nil
}

// publish sends an event without letting broker trouble fail the request.
func (s *sessionService) publish(ctx context.Context, event *events.FeedbackEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFeedbackEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// ===== SESSION HELPERS =====

// guardMutable rejects operations on a session that is submitted or has a
// check/submit running. Callers hold sess.mu.
func (sess *assessorSession) guardMutable() error {
	switch {
	case sess.state == StateSubmitted:
		return ErrAlreadySubmitted
	case sess.checkInFlight:
		return ErrCheckInFlight
	case sess.submitInFlight:
		return ErrSubmitInFlight
	}
	return nil
}

// orderedResponses returns the stored responses in question order. Callers
// hold sess.mu.
func (sess *assessorSession) orderedResponses() []models.Response {
	out := make([]models.Response, 0, len(sess.responses))
	for _, q := range sess.questions {
		if r, ok := sess.responses[q.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// evaluationResponses joins responses with their question metadata for the
// evaluator. Callers hold sess.mu.
func (sess *assessorSession) evaluationResponses() []models.EvaluationResponse {
	out := make([]models.EvaluationResponse, 0, len(sess.responses))
	for _, q := range sess.questions {
		r, ok := sess.responses[q.ID]
		if !ok {
			continue
		}
		out = append(out, models.EvaluationResponse{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			Category:     q.Category,
			Rating:       r.Rating,
			Text:         r.Text,
		})
	}
	return out
}

// view snapshots the session for the form. Callers hold sess.mu.
func (sess *assessorSession) view() *SessionView {
	responses := make(map[string]models.Response, len(sess.responses))
	for id, r := range sess.responses {
		responses[id] = r
	}
	return &SessionView{
		CampaignID:    sess.campaignID,
		CampaignTitle: sess.campaignTitle,
		TargetName:    sess.targetName,
		Relation:      sess.relation,
		Questions:     sess.questions,
		Responses:     responses,
		State:         sess.state,
		Review:        sess.review,
	}
}
