package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/automation"
	"github.com/fmuoria/CV-Assessment-agent/internal/export"
	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/sandbox"
	"github.com/fmuoria/CV-Assessment-agent/internal/scoring"
)

// MaxEditableSkills bounds the skills list a user can edit
const MaxEditableSkills = 10

// Notifier receives wizard events; automation.Client implements it
type Notifier interface {
	Notify(action string, payload map[string]any)
}

// Dependencies are the collaborators shared by every session
type Dependencies struct {
	Extractor *ingestion.Extractor
	Generator llm.Generator
	Runner    *sandbox.Runner
	Notifier  Notifier
	// Options holds the sampling settings per variant; DefaultOptions fills the gaps
	Options map[models.Variant]llm.Options
	Now     func() time.Time
}

// DefaultOptions are the sampling settings used when none are configured
func DefaultOptions(v models.Variant) llm.Options {
	opts := llm.Options{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 8192}
	if v == models.VariantChallenge {
		opts.MaxOutputTokens = 4096
	}
	return opts
}

// Controller drives one wizard session through upload, configure, interact and results
type Controller struct {
	id       string
	strategy Strategy
	deps     Dependencies

	mu       sync.Mutex
	step     models.Step
	token    uint64
	pending  int
	doc      *models.ExtractedDocument
	params   models.GenerationRequest
	deck     Deck
	index    int
	answers  models.Answers
	outputs  map[int]string
	skills   *models.EditableList
	score    *models.Score
	lastUsed time.Time
}

// NewController creates a session in the upload step
func NewController(id string, strategy Strategy, deps Dependencies) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Runner == nil {
		deps.Runner = sandbox.NewRunner(sandbox.DefaultTimeout)
	}
	c := &Controller{
		id:       id,
		strategy: strategy,
		deps:     deps,
	}
	c.clear()
	c.lastUsed = deps.Now()
	return c
}

// clear drops all session state; callers hold mu
func (c *Controller) clear() {
	c.step = models.StepUpload
	c.doc = nil
	c.params = models.GenerationRequest{ItemCount: models.DefaultItemCount, Difficulty: models.DifficultyMixed}
	c.deck = nil
	c.index = 0
	c.answers = models.Answers{}
	c.outputs = map[int]string{}
	c.skills = nil
	c.score = nil
}

// ID returns the session id
func (c *Controller) ID() string { return c.id }

// Variant returns the item variant of the session
func (c *Controller) Variant() models.Variant { return c.strategy.Variant() }

// Step returns the current step
func (c *Controller) Step() models.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// LastUsed is the time of the last call that touched the session
func (c *Controller) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

func (c *Controller) touch() {
	c.lastUsed = c.deps.Now()
}

func invalidTransition(action string, step models.Step) error {
	return fmt.Errorf("%w: cannot %s during %s", ErrInvalidTransition, action, step)
}

// start begins an asynchronous step. Any older request still in flight becomes stale.
func (c *Controller) start() uint64 {
	c.token++
	c.pending++
	c.touch()
	return c.token
}

// join begins an asynchronous step that runs alongside others. Only Reset or a newer
// start makes its result stale.
func (c *Controller) join() uint64 {
	c.pending++
	c.touch()
	return c.token
}

// finish ends an asynchronous step and reports whether its result may be applied
func (c *Controller) finish(token uint64) error {
	c.pending--
	if token != c.token {
		return ErrStaleResult
	}
	return nil
}

// Upload extracts the text of a CV. The challenge variant then generates right away.
func (c *Controller) Upload(ctx context.Context, up ingestion.Upload) error {
	if up.Content == nil {
		return fmt.Errorf("%w: no file selected", ErrValidation)
	}

	c.mu.Lock()
	if c.step != models.StepUpload {
		step := c.step
		c.mu.Unlock()
		return invalidTransition("upload", step)
	}
	token := c.start()
	c.doc = nil
	c.mu.Unlock()

	log.Printf("Extracting text from %s (session %s)", up.FileName, c.id)
	doc, err := c.deps.Extractor.Extract(ctx, up)

	c.mu.Lock()
	if staleErr := c.finish(token); staleErr != nil {
		c.mu.Unlock()
		return staleErr
	}
	if err != nil {
		c.mu.Unlock()
		log.Printf("Failed to extract %s: %v", up.FileName, err)
		return err
	}
	c.doc = &doc
	c.mu.Unlock()

	verboseLog("Extracted %d characters from %s", len(doc.RawText), doc.SourceFileName)

	if c.strategy.SkipsConfigure() {
		return c.generate(ctx, models.StepUpload)
	}
	return nil
}

// Configure stores the generation settings of a quiz
func (c *Controller) Configure(req models.GenerationRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.step != models.StepConfigure {
		return invalidTransition("configure", c.step)
	}

	req.SourceText = c.doc.RawText
	normalized, err := c.strategy.Spec().Normalize(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	normalized.SourceText = ""
	c.params = normalized
	return nil
}

// Generate runs the generation call. Quizzes generate from the configure step; challenges
// retry from the upload step after a failed automatic generation.
func (c *Controller) Generate(ctx context.Context) error {
	from := models.StepConfigure
	if c.strategy.SkipsConfigure() {
		from = models.StepUpload
	}
	return c.generate(ctx, from)
}

func (c *Controller) generate(ctx context.Context, from models.Step) error {
	c.mu.Lock()
	if c.step != from {
		step := c.step
		c.mu.Unlock()
		return invalidTransition("generate", step)
	}
	if c.doc == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: upload a CV first", ErrValidation)
	}
	if c.deps.Generator == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: no generation provider configured", ErrGenerationFailed)
	}
	token := c.start()
	doc, req := *c.doc, c.params
	c.mu.Unlock()

	log.Printf("Generating %s for %s (session %s)", c.strategy.Spec().ItemNoun, doc.SourceFileName, c.id)
	deck, err := c.strategy.Generate(ctx, c.deps.Generator, doc, req, c.options())

	c.mu.Lock()
	defer c.mu.Unlock()
	if staleErr := c.finish(token); staleErr != nil {
		return staleErr
	}
	if err != nil {
		log.Printf("Generation failed for session %s: %v", c.id, err)
		return err
	}

	c.deck = deck
	c.index = 0
	c.answers = models.Answers{}
	c.outputs = map[int]string{}
	c.score = nil
	c.skills = models.NewEditableList(MaxEditableSkills, topSkills(deck))
	c.step = models.StepInteract
	log.Printf("Generated %d items for session %s", deck.Len(), c.id)
	return nil
}

func (c *Controller) options() llm.Options {
	if opts, ok := c.deps.Options[c.strategy.Variant()]; ok {
		return opts
	}
	return DefaultOptions(c.strategy.Variant())
}

// Answer records the answer of an item, replacing any earlier one
func (c *Controller) Answer(id int, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.step != models.StepInteract {
		return invalidTransition("answer", c.step)
	}
	if !c.hasItem(id) {
		return fmt.Errorf("%w: no item with id %d", ErrValidation, id)
	}
	c.answers[id] = answer
	return nil
}

func (c *Controller) hasItem(id int) bool {
	for i := 0; i < c.deck.Len(); i++ {
		if c.deck.IDAt(i) == id {
			return true
		}
	}
	return false
}

// Next moves forward: from upload to configure, to the next item, or from the last item to results
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	switch c.step {
	case models.StepUpload:
		if c.strategy.SkipsConfigure() {
			return invalidTransition("continue", c.step)
		}
		if c.doc == nil {
			return fmt.Errorf("%w: upload a CV first", ErrValidation)
		}
		c.step = models.StepConfigure
	case models.StepInteract:
		if c.index < c.deck.Len()-1 {
			c.index++
			return nil
		}
		c.enterResults()
	default:
		return invalidTransition("go forward", c.step)
	}
	return nil
}

// Previous moves back one item, floored at the first, or from configure back to upload
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	switch c.step {
	case models.StepConfigure:
		c.step = models.StepUpload
	case models.StepInteract:
		if c.index > 0 {
			c.index--
		}
	default:
		return invalidTransition("go back", c.step)
	}
	return nil
}

// Goto jumps to the item at index
func (c *Controller) Goto(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.step != models.StepInteract {
		return invalidTransition("jump", c.step)
	}
	if index < 0 || index >= c.deck.Len() {
		return fmt.Errorf("%w: index %d out of range", ErrValidation, index)
	}
	c.index = index
	return nil
}

// enterResults scores the quiz and announces the completion; callers hold mu
func (c *Controller) enterResults() {
	c.step = models.StepResults

	quiz, ok := c.deck.(*models.GenerationResult[models.QuizItem])
	if !ok {
		return
	}
	s := scoring.Score(quiz.Items, c.answers)
	c.score = &s
	sum := scoring.Summarize(s)
	log.Printf("Session %s finished: %d/%d correct", c.id, s.Correct, s.Total)

	if c.deps.Notifier != nil {
		payload := map[string]any{
			"session_id":    c.id,
			"file_name":     c.doc.SourceFileName,
			"correct_count": s.Correct,
			"total":         s.Total,
			"top_skills":    c.skills.Entries(),
		}
		if sum.HasPercentage {
			payload["percentage"] = sum.Percentage
			payload["band"] = string(sum.Band)
		}
		c.deps.Notifier.Notify(automation.ActionQuizCompleted, payload)
	}
}

// Results is the outcome of a finished session
type Results struct {
	Variant models.Variant   `json:"variant"`
	Score   *scoring.Summary `json:"score,omitempty"`
	Answers models.Answers   `json:"answers"`
}

// Results returns the score of a finished quiz, recomputed from the stored answers.
// Challenge sessions have no score.
func (c *Controller) Results() (Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.step != models.StepResults {
		return Results{}, invalidTransition("show results", c.step)
	}

	res := Results{Variant: c.strategy.Variant(), Answers: c.answers.Clone()}
	if quiz, ok := c.deck.(*models.GenerationResult[models.QuizItem]); ok {
		sum := scoring.Summarize(scoring.Score(quiz.Items, c.answers))
		res.Score = &sum
	}
	return res, nil
}

// Reset discards the session and returns to upload. Requests still in flight become stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	c.token++
	c.clear()
	log.Printf("Session %s reset", c.id)
}

// RunCode executes the saved code of a challenge in the sandbox and keeps its output
func (c *Controller) RunCode(ctx context.Context, id int) (sandbox.Output, error) {
	c.mu.Lock()
	code, err := c.challengeCode(id)
	if err != nil {
		c.mu.Unlock()
		return sandbox.Output{}, err
	}
	token := c.join()
	c.mu.Unlock()

	out, err := c.deps.Runner.Run(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if staleErr := c.finish(token); staleErr != nil {
		return sandbox.Output{}, staleErr
	}
	if err != nil {
		return sandbox.Output{}, err
	}
	c.outputs[id] = out.String()
	return out, nil
}

// CheckCode reports syntax errors in the saved code of a challenge without running it
func (c *Controller) CheckCode(id int) error {
	c.mu.Lock()
	code, err := c.challengeCode(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if err := sandbox.Check(code); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// challengeCode returns the code saved for a challenge; callers hold mu
func (c *Controller) challengeCode(id int) (string, error) {
	c.touch()
	if c.strategy.Variant() != models.VariantChallenge {
		return "", fmt.Errorf("%w: code can only be run in a challenge session", ErrValidation)
	}
	if c.step != models.StepInteract && c.step != models.StepResults {
		return "", invalidTransition("run code", c.step)
	}
	if !c.hasItem(id) {
		return "", fmt.Errorf("%w: no challenge with id %d", ErrValidation, id)
	}
	code := c.answers[id]
	if code == "" {
		return "", fmt.Errorf("%w: no code saved for challenge %d", ErrValidation, id)
	}
	return code, nil
}

// SkillEdit is one change to the detected top skills
type SkillEdit struct {
	Op    string `json:"op"`
	Index int    `json:"index"`
	Value string `json:"value"`
}

// Skill edit operations
const (
	SkillAdd    = "add"
	SkillSet    = "set"
	SkillRemove = "remove"
)

// EditSkills applies one change to the top skills and returns the new list
func (c *Controller) EditSkills(e SkillEdit) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.skills == nil {
		return nil, invalidTransition("edit skills", c.step)
	}

	var err error
	switch e.Op {
	case SkillAdd:
		err = c.skills.Add(e.Value)
	case SkillSet:
		err = c.skills.Set(e.Index, e.Value)
	case SkillRemove:
		err = c.skills.Remove(e.Index)
	default:
		err = fmt.Errorf("unknown operation %q", e.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return c.skills.Entries(), nil
}

func topSkills(d Deck) []string {
	switch r := d.(type) {
	case *models.GenerationResult[models.QuizItem]:
		return r.TopSkills
	case *models.GenerationResult[models.Challenge]:
		return r.TopSkills
	}
	return nil
}

// Snapshot is a read-only view of a session for rendering
type Snapshot struct {
	ID         string                                     `json:"id"`
	Variant    models.Variant                             `json:"variant"`
	Step       models.Step                                `json:"step"`
	Busy       bool                                       `json:"busy"`
	FileName   string                                     `json:"file_name,omitempty"`
	MimeKind   models.MimeKind                            `json:"mime_kind,omitempty"`
	TextLength int                                        `json:"text_length,omitempty"`
	ItemCount  int                                        `json:"item_count"`
	Difficulty models.Difficulty                          `json:"difficulty,omitempty"`
	Index      int                                        `json:"current_index"`
	Total      int                                        `json:"total"`
	Answers    models.Answers                             `json:"answers"`
	Skills     []string                                   `json:"top_skills,omitempty"`
	Quiz       *models.GenerationResult[models.QuizItem]  `json:"quiz,omitempty"`
	Challenges *models.GenerationResult[models.Challenge] `json:"challenges,omitempty"`
	Outputs    map[int]string                             `json:"outputs,omitempty"`
	Score      *scoring.Summary                           `json:"score,omitempty"`
}

// Snapshot copies the session state. Quiz answers and explanations stay hidden until results.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:         c.id,
		Variant:    c.strategy.Variant(),
		Step:       c.step,
		Busy:       c.pending > 0,
		ItemCount:  c.params.ItemCount,
		Difficulty: c.params.Difficulty,
		Index:      c.index,
		Answers:    c.answers.Clone(),
	}
	if c.strategy.SkipsConfigure() {
		s.ItemCount = c.strategy.Spec().FixedCount
		s.Difficulty = ""
	}
	if c.doc != nil {
		s.FileName = c.doc.SourceFileName
		s.MimeKind = c.doc.MimeKind
		s.TextLength = len([]rune(c.doc.RawText))
	}
	if c.skills != nil {
		s.Skills = c.skills.Entries()
	}
	if len(c.outputs) > 0 {
		s.Outputs = make(map[int]string, len(c.outputs))
		for k, v := range c.outputs {
			s.Outputs[k] = v
		}
	}

	switch r := c.deck.(type) {
	case *models.GenerationResult[models.QuizItem]:
		quiz := *r
		quiz.Items = append([]models.QuizItem(nil), r.Items...)
		if c.step != models.StepResults {
			for i := range quiz.Items {
				quiz.Items[i].CorrectAnswer = ""
				quiz.Items[i].Explanation = ""
			}
		}
		s.Quiz = &quiz
		s.Total = len(quiz.Items)
	case *models.GenerationResult[models.Challenge]:
		ch := *r
		ch.Items = append([]models.Challenge(nil), r.Items...)
		s.Challenges = &ch
		s.Total = len(ch.Items)
	}

	if c.score != nil {
		sum := scoring.Summarize(*c.score)
		s.Score = &sum
	}
	return s
}

// Export formats
const (
	FormatHTML  = "html"
	FormatExcel = "xlsx"
	FormatJSON  = "json"
)

var errUnknownFormat = errors.New("unknown export format")

// Export renders the session as a downloadable report. Quizzes export once results are shown;
// challenges export at any point after generation.
func (c *Controller) Export(format string) (export.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	switch r := c.deck.(type) {
	case *models.GenerationResult[models.QuizItem]:
		if c.step != models.StepResults {
			return export.Document{}, invalidTransition("export", c.step)
		}
		result := *r
		result.TopSkills = c.skills.Entries()
		report := export.QuizReport{
			SourceFileName: c.doc.SourceFileName,
			Result:         result,
			Answers:        c.answers.Clone(),
			Score:          scoring.Score(r.Items, c.answers),
			GeneratedAt:    c.deps.Now(),
		}
		switch format {
		case FormatHTML:
			return export.RenderHTML(report)
		case FormatExcel:
			return export.RenderExcel(report)
		case FormatJSON:
			return export.RenderJSON(report.SourceFileName, result)
		}
	case *models.GenerationResult[models.Challenge]:
		result := *r
		result.TopSkills = c.skills.Entries()
		report := export.ChallengeReport{
			SourceFileName: c.doc.SourceFileName,
			Result:         result,
			Code:           c.answers.Clone(),
			Outputs:        make(map[int]string, len(c.outputs)),
			GeneratedAt:    c.deps.Now(),
		}
		for k, v := range c.outputs {
			report.Outputs[k] = v
		}
		switch format {
		case FormatHTML:
			return export.RenderChallengeHTML(report)
		case FormatJSON:
			return export.RenderJSON(report.SourceFileName, result)
		}
	default:
		return export.Document{}, invalidTransition("export", c.step)
	}
	return export.Document{}, fmt.Errorf("%w: %w %q", ErrValidation, errUnknownFormat, format)
}
