package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/scoring"
)

const timestampLayout = "2006-01-02 15:04"

const baseCSS = `
body { font-family: Arial, Helvetica, sans-serif; margin: 2rem auto; max-width: 860px; color: #222; }
header { border-bottom: 3px solid #4472C4; margin-bottom: 1.5rem; }
header h1 { margin: 0; color: #4472C4; }
.meta { color: #666; font-size: 0.9rem; }
.banner { padding: 1rem 1.5rem; border-radius: 8px; margin-bottom: 1.5rem; }
.banner .score { font-size: 2rem; font-weight: bold; }
.band-high { background: #C6EFCE; }
.band-medium { background: #FFEB9C; }
.band-low { background: #FFC7CE; }
.band-none { background: #EEEEEE; }
.skills span { display: inline-block; background: #E7EEFA; border-radius: 12px; padding: 2px 10px; margin: 2px; }
.item { border: 1px solid #DDD; border-radius: 8px; padding: 1rem; margin-bottom: 1rem; page-break-inside: avoid; }
.item.correct { border-left: 6px solid #2E7D32; }
.item.wrong { border-left: 6px solid #C62828; }
.badge { font-size: 0.75rem; background: #EEE; border-radius: 4px; padding: 1px 6px; margin-right: 4px; }
.answer { margin: 0.25rem 0; }
.explanation { color: #555; font-style: italic; }
pre { background: #F5F5F5; padding: 0.75rem; overflow-x: auto; }
@media print {
  body { margin: 0; max-width: none; }
  .no-print { display: none; }
  .banner, .skills span { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
}
`

var quizTemplate = template.Must(template.New("quiz").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Quiz report - {{.Source}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
  <h1>CV Quiz Report</h1>
  <p class="meta">{{.Source}} &middot; generated {{.Timestamp}}</p>
</header>

<section class="banner {{.BandClass}}">
  <div class="score">{{.Summary.Correct}} / {{.Summary.Total}}{{if .Summary.HasPercentage}} &middot; {{.Summary.Percentage}}%{{end}}</div>
  {{if .Summary.Label}}<div>{{.Summary.Label}}</div>{{end}}
</section>

<section>
  <h2>Profile</h2>
  <p>{{.Result.ProfileSummary}}</p>
  {{if .Result.TopSkills}}<div class="skills">{{range .Result.TopSkills}}<span>{{.}}</span>{{end}}</div>{{end}}
</section>

<section>
  <h2>Answers</h2>
  {{range .Rows}}
  <div class="item {{if .Correct}}correct{{else}}wrong{{end}}">
    <h3>{{.Number}}. {{.Item.Prompt}}</h3>
    <p>
      {{if .Item.Kind}}<span class="badge">{{.Item.Kind}}</span>{{end}}
      {{if .Item.Difficulty}}<span class="badge">{{.Item.Difficulty}}</span>{{end}}
      {{if .Item.Category}}<span class="badge">{{.Item.Category}}</span>{{end}}
    </p>
    {{if .Item.Options}}<ul>{{range .Item.Options}}<li>{{.}}</li>{{end}}</ul>{{end}}
    <p class="answer"><strong>Your answer:</strong> {{.UserAnswer}}</p>
    {{if .ShowCorrect}}<p class="answer"><strong>Correct answer:</strong> {{.CorrectAnswer}}</p>{{end}}
    {{if .Item.Explanation}}<p class="explanation">{{.Item.Explanation}}</p>{{end}}
  </div>
  {{end}}
</section>
</body>
</html>
`))

var challengeTemplate = template.Must(template.New("challenge").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Challenge review - {{.Source}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
  <h1>CV Coding Challenges</h1>
  <p class="meta">{{.Source}} &middot; generated {{.Timestamp}}</p>
</header>

<section>
  <h2>Profile</h2>
  <p>{{.Result.ProfileSummary}}</p>
  {{if .Result.TopSkills}}<div class="skills">{{range .Result.TopSkills}}<span>{{.}}</span>{{end}}</div>{{end}}
</section>

<section>
  <h2>Challenges</h2>
  {{range .Rows}}
  <div class="item">
    <h3>{{.Challenge.ID}}. {{.Challenge.Title}}</h3>
    <p>
      {{if .Challenge.Difficulty}}<span class="badge">{{.Challenge.Difficulty}}</span>{{end}}
      {{if .Challenge.Category}}<span class="badge">{{.Challenge.Category}}</span>{{end}}
    </p>
    <p>{{.Challenge.Description}}</p>
    {{if .Challenge.KeyConcepts}}<p><strong>Key concepts:</strong> {{.Challenge.KeyConcepts}}</p>{{end}}
    {{if .Challenge.TestDescriptions}}<p><strong>Tests:</strong></p><ul>{{range .Challenge.TestDescriptions}}<li>{{.}}</li>{{end}}</ul>{{end}}
    <p><strong>Submitted code:</strong></p>
    {{if .Code}}<pre>{{.Code}}</pre>{{else}}<p>(no code)</p>{{end}}
    {{if .Output}}<p><strong>Last run:</strong></p><pre>{{.Output}}</pre>{{end}}
    {{if .Challenge.SolutionApproach}}<p class="explanation">Suggested approach: {{.Challenge.SolutionApproach}}</p>{{end}}
  </div>
  {{end}}
</section>
</body>
</html>
`))

type challengeRow struct {
	Challenge models.Challenge
	Code      string
	Output    string
}

// RenderHTML renders the printable quiz report: header, score banner, profile, then one block per item
func RenderHTML(r QuizReport) (Document, error) {
	sum := scoring.Summarize(r.Score)
	bandClass := "band-none"
	if sum.Band != "" {
		bandClass = "band-" + string(sum.Band)
	}

	data := struct {
		CSS       template.CSS
		Source    string
		Timestamp string
		Summary   scoring.Summary
		BandClass string
		Result    models.GenerationResult[models.QuizItem]
		Rows      []itemRow
	}{
		CSS:       template.CSS(baseCSS),
		Source:    r.SourceFileName,
		Timestamp: stamp(r.GeneratedAt),
		Summary:   sum,
		BandClass: bandClass,
		Result:    r.Result,
		Rows:      quizRows(r),
	}

	var buf bytes.Buffer
	if err := quizTemplate.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("failed to render quiz report: %w", err)
	}

	return Document{
		FileName:    reportFileName(r.SourceFileName, "quiz_report", ".html"),
		ContentType: ContentTypeHTML,
		Body:        buf.Bytes(),
	}, nil
}

// RenderChallengeHTML renders the challenge review with the submitted code. There is no score.
func RenderChallengeHTML(r ChallengeReport) (Document, error) {
	rows := make([]challengeRow, 0, len(r.Result.Items))
	for _, c := range r.Result.Items {
		rows = append(rows, challengeRow{
			Challenge: c,
			Code:      r.Code[c.ID],
			Output:    r.Outputs[c.ID],
		})
	}

	data := struct {
		CSS       template.CSS
		Source    string
		Timestamp string
		Result    models.GenerationResult[models.Challenge]
		Rows      []challengeRow
	}{
		CSS:       template.CSS(baseCSS),
		Source:    r.SourceFileName,
		Timestamp: stamp(r.GeneratedAt),
		Result:    r.Result,
		Rows:      rows,
	}

	var buf bytes.Buffer
	if err := challengeTemplate.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("failed to render challenge report: %w", err)
	}

	return Document{
		FileName:    reportFileName(r.SourceFileName, "challenges", ".html"),
		ContentType: ContentTypeHTML,
		Body:        buf.Bytes(),
	}, nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(timestampLayout)
}
