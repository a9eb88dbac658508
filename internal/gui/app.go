package gui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/CV-Assessment-agent/internal/config"
	"github.com/fmuoria/CV-Assessment-agent/internal/export"
	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/wizard"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	deps       wizard.Dependencies
	wiz        *wizard.Controller
	ctx        context.Context
	cancelFunc context.CancelFunc

	// providersLoaded is set on the UI thread once the document parsers have loaded
	providersLoaded bool

	// UI Components
	variantSelect *widget.RadioGroup
	screen        *fyne.Container
	progressBar   *widget.ProgressBarInfinite
	progressLabel *widget.Label
	cancelBtn     *widget.Button
}

// NewApp creates a new GUI application around the shared wizard dependencies
func NewApp(cfg *config.Config, deps wizard.Dependencies) *App {
	a := app.New()
	w := a.NewWindow("CV Assessment Agent")
	w.Resize(fyne.NewSize(1000, 700))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		deps:       deps,
	}
	guiApp.wiz = wizard.NewController("desktop", wizard.QuizStrategy, deps)

	// Setup UI
	guiApp.setupUI()
	go guiApp.awaitProviders()

	return guiApp
}

// awaitProviders keeps the upload buttons disabled until the document parsers have loaded
func (a *App) awaitProviders() {
	if a.deps.Extractor != nil {
		err := a.deps.Extractor.Registry().AwaitAll(context.Background(), models.MimePDF, models.MimeDOCX)
		if err != nil {
			log.Printf("Some document parsers are unavailable: %v", err)
		}
	}

	fyne.Do(func() {
		a.providersLoaded = true
		a.render()
	})
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Assessment", a.createWizardTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createWizardTab creates the step screens and the shared progress bar
func (a *App) createWizardTab() fyne.CanvasObject {
	a.progressBar = widget.NewProgressBarInfinite()
	a.progressBar.Stop()
	a.progressBar.Hide()
	a.progressLabel = widget.NewLabel("Ready")
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	a.screen = container.NewStack()
	a.render()

	progressSection := container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, a.cancelBtn, a.progressLabel),
		a.progressBar,
	)

	return container.NewBorder(nil, progressSection, nil, nil, container.NewVScroll(a.screen))
}

// render rebuilds the screen of the current step
func (a *App) render() {
	snap := a.wiz.Snapshot()

	var content fyne.CanvasObject
	switch snap.Step {
	case models.StepUpload:
		content = a.uploadScreen(snap)
	case models.StepConfigure:
		content = a.configureScreen(snap)
	case models.StepInteract:
		if snap.Variant == models.VariantChallenge {
			content = a.challengeScreen(snap)
		} else {
			content = a.questionScreen(snap)
		}
	case models.StepResults:
		content = a.resultsScreen(snap)
	}

	a.screen.Objects = []fyne.CanvasObject{content}
	a.screen.Refresh()
}

// runAsync runs a wizard step off the UI thread and re-renders when it ends
func (a *App) runAsync(message string, task func(ctx context.Context) error) {
	a.ctx, a.cancelFunc = context.WithCancel(context.Background())
	ctx := a.ctx

	a.setBusy(true, message)

	go func() {
		err := task(ctx)

		// Wrap ALL UI updates in fyne.Do()
		fyne.Do(func() {
			a.setBusy(false, "Ready")
			switch {
			case err == nil:
			case errors.Is(err, wizard.ErrStaleResult):
				log.Printf("Discarded a stale result: %v", err)
			case errors.Is(err, context.Canceled):
				a.progressLabel.SetText("Canceled")
			default:
				a.progressLabel.SetText("Error: " + err.Error())
				dialog.ShowError(fmt.Errorf("%s: %w", wizard.Kind(err), err), a.mainWindow)
			}
			a.render()
		})
	}()
}

func (a *App) setBusy(busy bool, message string) {
	a.progressLabel.SetText(message)
	if busy {
		a.progressBar.Show()
		a.progressBar.Start()
		a.cancelBtn.Enable()
		return
	}
	a.progressBar.Stop()
	a.progressBar.Hide()
	a.cancelBtn.Disable()
}

// handleCancel cancels the step in progress
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// uploadScreen lets the user pick the variant and a CV
func (a *App) uploadScreen(snap wizard.Snapshot) fyne.CanvasObject {
	a.variantSelect = widget.NewRadioGroup([]string{"Quiz", "Coding challenges"}, func(choice string) {
		v := models.VariantQuiz
		if choice == "Coding challenges" {
			v = models.VariantChallenge
		}
		if v == a.wiz.Variant() {
			return
		}
		strategy, err := wizard.StrategyFor(v)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.wiz.Reset()
		a.wiz = wizard.NewController("desktop", strategy, a.deps)
		a.render()
	})
	a.variantSelect.Horizontal = true
	if snap.Variant == models.VariantChallenge {
		a.variantSelect.SetSelected("Coding challenges")
	} else {
		a.variantSelect.SetSelected("Quiz")
	}

	chooseBtn := widget.NewButton("Choose CV...", a.handleChooseFile)

	subjectEntry := widget.NewEntry()
	subjectEntry.SetPlaceHolder("e.g., Job Application")
	gmailBtn := widget.NewButton("Fetch from Gmail", func() {
		a.handleGmailFetch(subjectEntry.Text)
	})
	if a.config.GmailCredentialsPath == "" {
		gmailBtn.Disable()
	}

	status := widget.NewLabel("")
	if !a.providersLoaded {
		chooseBtn.Disable()
		gmailBtn.Disable()
		status.SetText("Loading document parsers...")
	}

	items := []fyne.CanvasObject{
		widget.NewLabel("Step 1 of 4: Upload a CV (PDF, DOCX or TXT)"),
		a.variantSelect,
		chooseBtn,
		status,
		widget.NewSeparator(),
		widget.NewLabel("Or fetch the newest CV attachment from Gmail"),
		container.NewBorder(nil, nil, nil, gmailBtn, subjectEntry),
	}

	if snap.FileName != "" {
		items = append(items,
			widget.NewSeparator(),
			widget.NewLabel(fmt.Sprintf("Loaded %s (%s, %d characters)", snap.FileName, snap.MimeKind.Label(), snap.TextLength)),
		)
		if snap.Variant == models.VariantChallenge {
			// A failed automatic generation keeps the document for a retry
			items = append(items, widget.NewButton("Retry generation", func() {
				a.runAsync("Generating challenges...", a.wiz.Generate)
			}))
		} else {
			items = append(items, widget.NewButton("Next", func() {
				if err := a.wiz.Next(); err != nil {
					dialog.ShowError(err, a.mainWindow)
				}
				a.render()
			}))
		}
	}

	return container.NewVBox(items...)
}

// handleChooseFile reads the selected file and hands it to the wizard
func (a *App) handleChooseFile() {
	dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		data, err := io.ReadAll(uc)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to read file: %w", err), a.mainWindow)
			return
		}
		if limit := a.config.MaxUploadBytes(); limit > 0 && int64(len(data)) > limit {
			dialog.ShowError(fmt.Errorf("%s is larger than %d MB", uc.URI().Name(), a.config.MaxUploadMB), a.mainWindow)
			return
		}

		up := ingestion.Upload{
			FileName: uc.URI().Name(),
			MimeType: uc.URI().MimeType(),
			Content:  bytes.NewReader(data),
		}
		message := "Extracting text..."
		if a.wiz.Variant() == models.VariantChallenge {
			message = "Extracting text and generating challenges..."
		}
		a.runAsync(message, func(ctx context.Context) error {
			return a.wiz.Upload(ctx, up)
		})
	}, a.mainWindow)
}

// handleGmailFetch uses the newest CV attachment whose message matches subject
func (a *App) handleGmailFetch(subject string) {
	if strings.TrimSpace(subject) == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}

	a.runAsync("Fetching CV from Gmail...\nCheck the console for the OAuth URL if your browser doesn't open.", func(ctx context.Context) error {
		src, err := ingestion.NewGmailSource(ctx, a.config.GmailCredentialsPath, a.config.GmailTokenPath)
		if err != nil {
			return err
		}
		up, err := src.FetchLatestCV(ctx, subject)
		if err != nil {
			return err
		}
		return a.wiz.Upload(ctx, up)
	})
}

var difficultyLabels = []string{"Easy", "Medium", "Hard", "Mixed"}

// configureScreen sets the question count and difficulty of a quiz
func (a *App) configureScreen(snap wizard.Snapshot) fyne.CanvasObject {
	count := snap.ItemCount
	countLabel := widget.NewLabel(fmt.Sprintf("Questions: %d", count))
	slider := widget.NewSlider(models.MinItemCount, models.MaxItemCount)
	slider.Step = 1
	slider.Value = float64(count)
	slider.OnChanged = func(v float64) {
		count = int(v)
		countLabel.SetText(fmt.Sprintf("Questions: %d", count))
	}

	difficulty := widget.NewRadioGroup(difficultyLabels, nil)
	difficulty.Horizontal = true
	difficulty.SetSelected(titleCase(string(snap.Difficulty)))

	backBtn := widget.NewButton("Back", func() {
		if err := a.wiz.Previous(); err != nil {
			dialog.ShowError(err, a.mainWindow)
		}
		a.render()
	})
	generateBtn := widget.NewButton("Generate quiz", func() {
		req := models.GenerationRequest{
			ItemCount:  count,
			Difficulty: models.ParseDifficulty(difficulty.Selected),
		}
		if err := a.wiz.Configure(req); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.runAsync(fmt.Sprintf("Generating %d questions...", count), a.wiz.Generate)
	})
	generateBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabel(fmt.Sprintf("Step 2 of 4: Configure the quiz for %s", snap.FileName)),
		countLabel,
		slider,
		widget.NewLabel("Difficulty"),
		difficulty,
		container.NewHBox(backBtn, generateBtn),
	)
}

// questionScreen shows one quiz question
func (a *App) questionScreen(snap wizard.Snapshot) fyne.CanvasObject {
	item := snap.Quiz.Items[snap.Index]

	prompt := widget.NewLabel(item.Prompt)
	prompt.Wrapping = fyne.TextWrapWord
	prompt.TextStyle = fyne.TextStyle{Bold: true}

	var input fyne.CanvasObject
	if len(item.Options) > 0 {
		radio := widget.NewRadioGroup(item.Options, nil)
		radio.SetSelected(snap.Answers[item.ID])
		radio.OnChanged = func(choice string) {
			a.answer(item.ID, choice)
		}
		input = radio
	} else {
		entry := widget.NewMultiLineEntry()
		entry.Wrapping = fyne.TextWrapWord
		entry.SetMinRowsVisible(5)
		entry.SetPlaceHolder("Your answer...")
		entry.SetText(snap.Answers[item.ID])
		entry.OnChanged = func(text string) {
			a.answer(item.ID, text)
		}
		input = entry
	}

	return container.NewVBox(
		widget.NewLabel(fmt.Sprintf("Step 3 of 4: Question %d of %d", snap.Index+1, snap.Total)),
		widget.NewLabel(fmt.Sprintf("%s · %s · %s", item.Kind, item.Difficulty, item.Category)),
		prompt,
		input,
		a.navigation(snap),
		a.profileSection(snap),
	)
}

// challengeScreen shows one coding challenge with its code editor
func (a *App) challengeScreen(snap wizard.Snapshot) fyne.CanvasObject {
	ch := snap.Challenges.Items[snap.Index]

	description := widget.NewLabel(ch.Description)
	description.Wrapping = fyne.TextWrapWord

	tests := widget.NewLabel("• " + strings.Join(ch.TestDescriptions, "\n• "))
	tests.Wrapping = fyne.TextWrapWord

	editor := widget.NewMultiLineEntry()
	editor.TextStyle = fyne.TextStyle{Monospace: true}
	editor.SetMinRowsVisible(10)
	editor.SetPlaceHolder("// Write your JavaScript solution here")
	editor.SetText(snap.Answers[ch.ID])
	editor.OnChanged = func(code string) {
		a.answer(ch.ID, code)
	}

	output := widget.NewLabel(snap.Outputs[ch.ID])
	output.TextStyle = fyne.TextStyle{Monospace: true}
	output.Wrapping = fyne.TextWrapWord

	runBtn := widget.NewButton("Run", func() {
		a.runAsync("Running code...", func(ctx context.Context) error {
			_, err := a.wiz.RunCode(ctx, ch.ID)
			return err
		})
	})
	checkBtn := widget.NewButton("Check syntax", func() {
		if err := a.wiz.CheckCode(ch.ID); err != nil {
			output.SetText(err.Error())
			return
		}
		output.SetText("No syntax errors")
	})

	return container.NewVBox(
		widget.NewLabel(fmt.Sprintf("Challenge %d of %d: %s", snap.Index+1, snap.Total, ch.Title)),
		widget.NewLabel(fmt.Sprintf("%s · %s", ch.Difficulty, ch.Category)),
		description,
		widget.NewLabel("Key concepts: "+ch.KeyConcepts),
		widget.NewLabel("Tests"),
		tests,
		editor,
		container.NewHBox(runBtn, checkBtn),
		output,
		a.navigation(snap),
		a.profileSection(snap),
	)
}

func (a *App) answer(id int, text string) {
	if err := a.wiz.Answer(id, text); err != nil {
		log.Printf("Failed to record answer %d: %v", id, err)
	}
}

// navigation renders Previous and Next; Next on the last item finishes
func (a *App) navigation(snap wizard.Snapshot) fyne.CanvasObject {
	prevBtn := widget.NewButton("Previous", func() {
		if err := a.wiz.Previous(); err != nil {
			dialog.ShowError(err, a.mainWindow)
		}
		a.render()
	})
	if snap.Index == 0 {
		prevBtn.Disable()
	}

	label := "Next"
	if snap.Index == snap.Total-1 {
		label = "Finish"
	}
	nextBtn := widget.NewButton(label, func() {
		if err := a.wiz.Next(); err != nil {
			dialog.ShowError(err, a.mainWindow)
		}
		a.render()
	})
	nextBtn.Importance = widget.HighImportance

	resetBtn := widget.NewButton("Start over", a.confirmReset)

	return container.NewHBox(prevBtn, nextBtn, resetBtn)
}

// profileSection shows the profile summary and the editable skills
func (a *App) profileSection(snap wizard.Snapshot) fyne.CanvasObject {
	var summary string
	switch {
	case snap.Quiz != nil:
		summary = snap.Quiz.ProfileSummary
	case snap.Challenges != nil:
		summary = snap.Challenges.ProfileSummary
	}

	summaryLabel := widget.NewLabel(summary)
	summaryLabel.Wrapping = fyne.TextWrapWord

	return container.NewVBox(
		widget.NewSeparator(),
		widget.NewLabel("Profile"),
		summaryLabel,
		container.NewHBox(
			widget.NewLabel("Top skills: "+strings.Join(snap.Skills, ", ")),
			widget.NewButton("Edit...", a.showSkillsDialog),
		),
	)
}

// showSkillsDialog edits the detected top skills
func (a *App) showSkillsDialog() {
	skills := a.wiz.Snapshot().Skills
	selected := -1

	entry := widget.NewEntry()
	list := widget.NewList(
		func() int { return len(skills) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(skills[id])
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		selected = id
		entry.SetText(skills[id])
	}

	apply := func(edit wizard.SkillEdit) {
		updated, err := a.wiz.EditSkills(edit)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		skills = updated
		selected = -1
		list.UnselectAll()
		list.Refresh()
		entry.SetText("")
	}

	buttons := container.NewHBox(
		widget.NewButton("Add", func() {
			apply(wizard.SkillEdit{Op: wizard.SkillAdd, Value: entry.Text})
		}),
		widget.NewButton("Update", func() {
			apply(wizard.SkillEdit{Op: wizard.SkillSet, Index: selected, Value: entry.Text})
		}),
		widget.NewButton("Remove", func() {
			apply(wizard.SkillEdit{Op: wizard.SkillRemove, Index: selected})
		}),
	)

	content := container.NewBorder(nil, container.NewVBox(entry, buttons), nil, nil, list)
	d := dialog.NewCustom("Top skills", "Close", content, a.mainWindow)
	d.SetOnClosed(a.render)
	d.Resize(fyne.NewSize(400, 400))
	d.Show()
}

// resultsScreen shows the score and the reviewed items
func (a *App) resultsScreen(snap wizard.Snapshot) fyne.CanvasObject {
	items := []fyne.CanvasObject{widget.NewLabel("Step 4 of 4: Results")}

	if snap.Score != nil {
		score := widget.NewLabel(fmt.Sprintf("%d / %d", snap.Score.Correct, snap.Score.Total))
		score.TextStyle = fyne.TextStyle{Bold: true}
		items = append(items, score)
		if snap.Score.HasPercentage {
			items = append(items, widget.NewLabel(fmt.Sprintf("%d%% · %s", snap.Score.Percentage, snap.Score.Label)))
		}
	}

	if snap.Quiz != nil {
		for i, it := range snap.Quiz.Items {
			ans, ok := snap.Answers[it.ID]
			if !ok || ans == "" {
				ans = export.Unanswered
			}
			text := fmt.Sprintf("%d. %s\nYour answer: %s", i+1, it.Prompt, ans)
			if ans != it.CorrectAnswer {
				text += "\nCorrect answer: " + it.CorrectAnswer
			}
			if it.Explanation != "" {
				text += "\n" + it.Explanation
			}
			l := widget.NewLabel(text)
			l.Wrapping = fyne.TextWrapWord
			items = append(items, l)
		}
	}
	if snap.Challenges != nil {
		for i, ch := range snap.Challenges.Items {
			l := widget.NewLabel(fmt.Sprintf("%d. %s\nSuggested approach: %s", i+1, ch.Title, ch.SolutionApproach))
			l.Wrapping = fyne.TextWrapWord
			items = append(items, l)
		}
	}

	exportBtns := container.NewHBox(
		widget.NewButton("Export HTML", func() { a.handleExport(wizard.FormatHTML) }),
		widget.NewButton("Export JSON", func() { a.handleExport(wizard.FormatJSON) }),
	)
	if snap.Variant == models.VariantQuiz {
		exportBtns.Add(widget.NewButton("Export to Excel", func() { a.handleExport(wizard.FormatExcel) }))
	}

	items = append(items,
		widget.NewSeparator(),
		exportBtns,
		widget.NewButton("New session", func() {
			a.wiz.Reset()
			a.render()
		}),
	)
	return container.NewVBox(items...)
}

// handleExport saves a report where the user chooses
func (a *App) handleExport(format string) {
	doc, err := a.wiz.Export(format)
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	// Show save dialog
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if _, err := uc.Write(doc.Body); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Report exported successfully to "+filepath.Base(uc.URI().Path()), a.mainWindow)
	}, a.mainWindow)
	d.SetFileName(doc.FileName)
	d.Show()
}

func (a *App) confirmReset() {
	dialog.ShowConfirm("Start over", "Discard this session and upload another CV?", func(ok bool) {
		if !ok {
			return
		}
		if a.cancelFunc != nil {
			a.cancelFunc()
		}
		a.wiz.Reset()
		a.render()
	}, a.mainWindow)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	providerSelect := widget.NewSelect([]string{llm.ProviderGemini, llm.ProviderVertexAI, llm.ProviderOpenAI}, nil)
	providerSelect.SetSelected(a.config.LLMProvider)

	modelEntry := widget.NewEntry()
	modelEntry.SetText(a.config.LLMModel)
	modelEntry.SetPlaceHolder("provider default")

	geminiKeyEntry := widget.NewPasswordEntry()
	geminiKeyEntry.SetText(a.config.GeminiAPIKey)

	openAIKeyEntry := widget.NewPasswordEntry()
	openAIKeyEntry.SetText(a.config.OpenAIAPIKey)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.GoogleCloudProject)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.GoogleCloudLocation)

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	webhookEntry := widget.NewEntry()
	webhookEntry.SetText(a.config.AutomationWebhookURL)

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("LLM Provider", providerSelect),
		widget.NewFormItem("Model", modelEntry),
		widget.NewFormItem("Gemini API Key", geminiKeyEntry),
		widget.NewFormItem("OpenAI API Key", openAIKeyEntry),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
		widget.NewFormItem("Automation Webhook", webhookEntry),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		a.config.LLMProvider = providerSelect.Selected
		a.config.LLMModel = modelEntry.Text
		a.config.GeminiAPIKey = geminiKeyEntry.Text
		a.config.OpenAIAPIKey = openAIKeyEntry.Text
		a.config.GoogleCloudProject = projectEntry.Text
		a.config.GoogleCloudLocation = locationEntry.Text
		a.config.GmailCredentialsPath = gmailCredsEntry.Text
		a.config.AutomationWebhookURL = webhookEntry.Text

		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		// Apply to environment
		a.config.ApplyToEnv()

		dialog.ShowInformation("Success", "Settings saved. Restart the application to switch providers.", a.mainWindow)
		a.render()
	})

	testBtn := widget.NewButton("Test Connection", func() {
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

// titleCase capitalizes the first letter of an ASCII word
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
