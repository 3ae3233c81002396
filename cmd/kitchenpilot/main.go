// KitchenPilot — a voice-guided cooking copilot with a pantry that
// watches expiry dates.
//
// Usage:
//
//	kitchenpilot [-verbose] [-quiet] [-voice]
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tariften/kitchenpilot/internal/backend"
	"github.com/tariften/kitchenpilot/internal/display"
	"github.com/tariften/kitchenpilot/internal/domain"
	"github.com/tariften/kitchenpilot/internal/freshness"
	"github.com/tariften/kitchenpilot/internal/logger"
	"github.com/tariften/kitchenpilot/internal/pantry"
	"github.com/tariften/kitchenpilot/internal/session"
	"github.com/tariften/kitchenpilot/internal/speech"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".kitchenpilot/pilot.log", "file to write logs to (use \"stderr\" to log to console)")
	apiURL := flag.String("api-url", "https://api.tariften.com", "tariften API base URL")
	token := flag.String("token", "", "API bearer token (or TARIFTEN_TOKEN env var)")
	dataDir := flag.String("data-dir", ".kitchenpilot/cache", "directory for the local pantry snapshot")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	ttsVoice := flag.String("voice-name", speech.DefaultVoice, "Azure TTS voice")
	voice := flag.Bool("voice", false, "enable voice input via local Whisper STT")
	whisperBin := flag.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	recordSecs := flag.Int("record-secs", 3, "seconds per voice recording chunk")
	flag.Parse()

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libs (the whisper transcriber) use the std log package.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	var log *zap.SugaredLogger
	switch {
	case *quiet:
		log = logger.Nop()
	case *verbose:
		log = logger.New(zapcore.DebugLevel, logOut)
	default:
		log = logger.New(zapcore.InfoLevel, logOut)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	apiToken := *token
	if apiToken == "" {
		apiToken = os.Getenv("TARIFTEN_TOKEN")
	}
	api := backend.New(*apiURL, apiToken, backend.WithLogger(logger.Named(log, "backend")))

	var cache pantry.Snapshotter
	if *dataDir != "" {
		os.MkdirAll(*dataDir, 0o755)
		c, err := pantry.OpenCache(*dataDir, logger.Named(log, "cache"))
		if err != nil {
			log.Warnw("pantry cache unavailable", "err", err)
		} else {
			cache = c
			defer c.Close()
		}
	}

	engineOpts := []pantry.Option{pantry.WithLogger(logger.Named(log, "pantry"))}
	if cache != nil {
		engineOpts = append(engineOpts, pantry.WithCache(cache))
	}
	eng := pantry.NewEngine(api, engineOpts...)
	defer eng.Close()

	app := &cliApp{
		api:    api,
		engine: eng,
		log:    log,
	}
	app.ui = display.NewUI(app.statusLine)

	textNotifier := &cliNotifier{ui: app.ui}

	// TTS: Azure key + audio device, otherwise the silent fallback.
	var activeNotifier domain.Notifier = textNotifier
	var mouth *speech.Mouth
	var voiceOut domain.SpeechOutput = speech.NewNoVoice(log)

	azureKey := os.Getenv(speech.EnvAzureSpeechKey)
	azureRegion := os.Getenv(speech.EnvAzureSpeechRegion)
	if azureKey != "" && azureRegion != "" && !*noSpeech {
		tts := speech.NewAzureClient(azureKey, azureRegion, logger.Named(log, "tts"),
			speech.WithVoice(*ttsVoice),
		)
		player, err := speech.NewPlayer(logger.Named(log, "audio"))
		if err != nil {
			log.Errorw("audio player init failed, speech disabled", "err", err)
		} else {
			mouth = speech.NewMouth(tts, player, logger.Named(log, "mouth"))
			mouth.Start(ctx)
			voiceOut = speech.NewVoice(mouth)
			activeNotifier = speech.NewSpeakingNotifier(textNotifier, mouth)
			log.Infow("TTS enabled", "voice", *ttsVoice, "region", azureRegion)
		}
	} else if !*noSpeech {
		log.Infof("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
	}
	app.voice = voiceOut
	app.mouth = mouth

	// STT.
	var ear domain.VoiceCapture = speech.NewNoEar()
	if *voice {
		if _, err := os.Stat(*whisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", *whisperModel)
			os.Exit(1)
		}
		if mouth == nil {
			fmt.Fprintln(os.Stderr, "error: voice input requires TTS (the ear needs the mouth for echo suppression)")
			os.Exit(1)
		}
		ear = speech.NewEar(*whisperBin, *whisperModel, mouth, logger.Named(log, "ear"),
			speech.WithChunkDuration(time.Duration(*recordSecs)*time.Second),
		)
		log.Infow("voice input enabled", "bin", *whisperBin, "model", *whisperModel)
	}
	app.ear = ear
	go ear.Run(ctx)

	// Pantry watcher: daily expiry nudges, spoken when TTS is up.
	watcher := pantry.NewWatcher(eng, activeNotifier, logger.Named(log, "watcher"),
		pantry.WithWatchInterval(1*time.Hour),
	)
	go watcher.Run(ctx)

	fmt.Println(display.RenderBanner())
	if *voice {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON — type 'mic' to toggle listening."))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		app.ui.WaitReady()
		app.run(ctx)
		app.ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := app.ui.Run(); err != nil {
		log.Errorw("display failed", "err", err)
	}
	cancel()
}

// cliNotifier prints watcher messages into the REPL scrollback.
type cliNotifier struct {
	ui *display.UI
}

func (n *cliNotifier) Notify(ctx context.Context, message string) error {
	n.ui.PrintHint(message)
	return nil
}

func (n *cliNotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.ui.PrintUrgent(message)
	return nil
}

// bellHaptics rings the terminal bell in place of device vibration.
type bellHaptics struct {
	ui *display.UI
}

func (b *bellHaptics) Vibrate() {
	b.ui.Printf("\a")
}

type cliApp struct {
	api    *backend.Client
	engine *pantry.Engine
	voice  domain.SpeechOutput
	mouth  *speech.Mouth // nil when TTS is disabled
	ear    domain.VoiceCapture
	log    *zap.SugaredLogger
	ui     *display.UI

	// cook is read by the status bar on the UI goroutine.
	mu    sync.Mutex
	cook  *session.Controller // nil outside a cooking session
	micOn bool
}

func (a *cliApp) session() *session.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cook
}

func (a *cliApp) setSession(c *session.Controller) {
	a.mu.Lock()
	a.cook = c
	a.mu.Unlock()
}

// statusLine feeds the display's status bar.
func (a *cliApp) statusLine() display.Status {
	s := display.Status{
		SaveStatus:    a.engine.Status().String(),
		CriticalItems: len(a.engine.Critical()),
	}
	if cook := a.session(); cook != nil {
		snap := cook.Snapshot()
		s.CookingActive = true
		s.RecipeTitle = cook.Recipe().Title
		s.StepIndex = snap.StepIndex
		s.StepCount = snap.StepCount
		s.TimerRemaining = time.Duration(snap.Timer.RemainingSeconds) * time.Second
		s.TimerRunning = snap.Timer.Running
		s.TimerPaused = snap.Timer.Paused
		s.AlarmActive = snap.AlarmActive
		s.Listening = snap.Listening
		if snap.Overlay != domain.OverlayNone {
			s.Overlay = snap.Overlay.String()
		}
	}
	return s
}

func (a *cliApp) run(ctx context.Context) {
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := a.engine.Load(loadCtx); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.ui.PrintWarn("Not signed in — pantry is read-only. Pass -token or set TARIFTEN_TOKEN.")
		} else {
			a.ui.PrintUrgent("Pantry could not be loaded: " + err.Error())
		}
	}
	loadCancel()
	a.showPantry()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			a.endCooking(false)
			return
		case input, ok = <-a.ui.InputChan():
			if !ok {
				a.endCooking(false)
				return
			}
		case input = <-a.ear.C():
			a.ui.PrintVoice(input)
			if cook := a.session(); cook != nil {
				cook.HandleUtterance(input)
				continue
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if quit := a.handleLine(ctx, input); quit {
			return
		}
	}
}

// handleLine dispatches one typed command. Returns true on quit.
func (a *cliApp) handleLine(ctx context.Context, input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		a.endCooking(false)
		return true

	case "help":
		a.showHelp()

	case "pantry", "list":
		a.showPantry()

	case "add":
		if rest == "" {
			a.ui.PrintHint("usage: add <name> [<n> gün|hafta|ay][, more items]")
			return false
		}
		added := a.engine.QuickAdd(rest)
		for _, item := range added {
			a.ui.PrintFresh(fmt.Sprintf("+ %s (son kullanma %s)", item.Name, item.ExpiresIn))
		}

	case "rm", "remove":
		item, ok := a.resolveItem(rest)
		if !ok {
			return false
		}
		if a.engine.Remove(item.ID) {
			a.ui.PrintHint("removed " + item.Name)
		}

	case "date":
		ref, dateArg, _ := strings.Cut(rest, " ")
		item, ok := a.resolveItem(ref)
		if !ok {
			return false
		}
		dateArg = strings.TrimSpace(dateArg)
		if dateArg == "-" {
			dateArg = ""
		}
		if err := a.engine.SetExpiry(item.ID, dateArg); err != nil {
			a.ui.PrintUrgent(err.Error())
			return false
		}
		a.ui.PrintHint(fmt.Sprintf("%s -> %s", item.Name, dateArg))

	case "scan":
		a.scanReceipt(ctx, rest)

	case "suggest":
		a.suggest(ctx)

	case "refresh":
		if err := a.engine.Load(ctx); err != nil {
			a.ui.PrintUrgent("refresh failed: " + err.Error())
			return false
		}
		a.showPantry()

	case "cook":
		a.startCooking(ctx, rest)

	case "finish", "done":
		a.endCooking(true)

	case "mic":
		a.toggleMic()

	case "sos":
		a.handleSOS(rest)

	default:
		// Inside a session everything else is treated as an utterance, so
		// typed commands and voice share one vocabulary.
		if cook := a.session(); cook != nil {
			cook.HandleUtterance(input)
			return false
		}
		a.ui.PrintHint("unknown command — type 'help'")
	}
	return false
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Pantry")
	a.ui.PrintHint("pantry              list items with freshness")
	a.ui.PrintHint("add <text>          quick add: 'add süt 3 gün, yumurta'")
	a.ui.PrintHint("rm <#|id>           remove an item")
	a.ui.PrintHint("date <#|id> <date>  set expiry (YYYY-MM-DD, '-' clears)")
	a.ui.PrintHint("scan <file|text>    analyze a receipt photo or its text")
	a.ui.PrintHint("suggest             AI recipe from expiring items")
	a.ui.PrintHint("refresh             reload from the server")
	a.ui.PrintStep("Cooking")
	a.ui.PrintHint("cook <slug>         start a guided session")
	a.ui.PrintHint("sonraki / geri / oku / tamam     navigate steps")
	a.ui.PrintHint("<n> dakika          start a countdown")
	a.ui.PrintHint("süreyi durdur / devam / iptal    control the countdown")
	a.ui.PrintHint("yardım / acil       open help or kitchen SOS")
	a.ui.PrintHint("sos <burnt|salty|watery|other>   ask for a rescue")
	a.ui.PrintHint("finish              end the session")
	a.ui.PrintStep("Other")
	a.ui.PrintHint("mic                 toggle voice listening")
	a.ui.PrintHint("quit                exit")
}

func (a *cliApp) showPantry() {
	items := a.engine.Items()
	if len(items) == 0 {
		a.ui.PrintHint("pantry is empty — try 'add süt 3 gün'")
		return
	}
	a.ui.PrintStep(fmt.Sprintf("Pantry (%d items, %s)", len(items), a.engine.Status()))
	now := time.Now()
	for i, item := range items {
		f := freshness.Derive(item.ExpiresIn, now)
		line := fmt.Sprintf("%2d. %-20s %s", i+1, item.Name, f.Text)
		switch f.Status {
		case domain.StatusExpired:
			a.ui.PrintUrgent(line)
		case domain.StatusWarning:
			a.ui.PrintWarn(line)
		default:
			a.ui.PrintFresh(line)
		}
	}
}

// resolveItem accepts a 1-based list index or an item id.
func (a *cliApp) resolveItem(ref string) (domain.PantryItem, bool) {
	items := a.engine.Items()
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], true
	}
	for _, item := range items {
		if item.ID == ref {
			return item, true
		}
	}
	a.ui.PrintUrgent("no such item: " + ref)
	return domain.PantryItem{}, false
}

func (a *cliApp) scanReceipt(ctx context.Context, arg string) {
	if arg == "" {
		a.ui.PrintHint("usage: scan <image file or receipt text>")
		return
	}

	var text, image string
	if data, err := os.ReadFile(arg); err == nil {
		image = base64.StdEncoding.EncodeToString(data)
		a.ui.PrintHint("analyzing receipt photo " + filepath.Base(arg) + "...")
	} else {
		text = arg
		a.ui.PrintHint("analyzing receipt text...")
	}

	added, err := a.engine.ScanReceipt(ctx, text, image)
	if err != nil {
		a.ui.PrintUrgent("scan failed: " + err.Error())
		return
	}
	if len(added) == 0 {
		a.ui.PrintHint("nothing recognized")
		return
	}
	for _, item := range added {
		a.ui.PrintFresh("+ " + item.Name)
	}
}

func (a *cliApp) suggest(ctx context.Context) {
	a.ui.PrintHint("asking the chef...")
	ref, err := a.engine.Suggest(ctx)
	if err != nil {
		a.ui.PrintUrgent("suggestion failed: " + err.Error())
		return
	}
	a.ui.PrintChat("Yeni tarif hazır: " + ref.Slug)
	a.ui.PrintHint("start it with: cook " + ref.Slug)
}

func (a *cliApp) startCooking(ctx context.Context, slug string) {
	if slug == "" {
		a.ui.PrintHint("usage: cook <recipe-slug>  (or 'cook demo')")
		return
	}
	if a.session() != nil {
		a.ui.PrintWarn("already cooking, 'finish' first")
		return
	}

	var recipe *domain.Recipe
	if slug == "demo" {
		recipe = demoRecipe()
	} else {
		r, err := a.api.FetchRecipe(ctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.ui.PrintUrgent("recipe not found: " + slug)
			} else {
				a.ui.PrintUrgent("recipe fetch failed: " + err.Error())
			}
			return
		}
		recipe = r
	}
	if len(recipe.Steps) == 0 {
		a.ui.PrintUrgent("recipe has no steps")
		return
	}

	cook := session.New(recipe, a.voice, &bellHaptics{ui: a.ui},
		session.WithLogger(logger.Named(a.log, "session")),
	)
	a.setSession(cook)
	a.ui.PrintStep("Cooking: " + recipe.Title)
	if recipe.ChefTip != "" {
		a.ui.PrintHint("İpucu: " + recipe.ChefTip)
	}
	a.printStep()
	cook.Start()
	if a.micOn {
		cook.SetListening(true)
	}
}

func (a *cliApp) printStep() {
	cook := a.session()
	if cook == nil {
		return
	}
	snap := cook.Snapshot()
	a.ui.PrintStep(fmt.Sprintf("Adım %d/%d", snap.StepIndex+1, snap.StepCount))
	step := cook.Step()
	a.ui.PrintInstruction(step.Content)
	if step.TimerSeconds > 0 {
		a.ui.PrintHint(fmt.Sprintf("önerilen süre: %d dakika", step.TimerSeconds/60))
	}
}

func (a *cliApp) endCooking(announce bool) {
	cook := a.session()
	if cook == nil {
		if announce {
			a.ui.PrintHint("no active session")
		}
		return
	}
	cook.Close()
	a.setSession(nil)
	if announce {
		a.ui.PrintChat("Afiyet olsun!")
	}
}

func (a *cliApp) toggleMic() {
	a.micOn = !a.micOn
	if a.micOn {
		a.ear.Unmute()
		a.ui.PrintFresh("mic on")
	} else {
		a.ear.Mute()
		a.ui.PrintHint("mic off")
	}
	if cook := a.session(); cook != nil {
		cook.SetListening(a.micOn)
	}
}

func (a *cliApp) handleSOS(arg string) {
	cook := a.session()
	if cook == nil {
		a.ui.PrintHint("sos works inside a cooking session")
		return
	}
	var category domain.SOSCategory
	switch strings.ToLower(arg) {
	case "burnt", "yanık", "yandı":
		category = domain.SOSBurnt
	case "salty", "tuzlu":
		category = domain.SOSSalty
	case "watery", "sulu":
		category = domain.SOSWatery
	case "other", "diğer", "":
		category = domain.SOSOther
	default:
		a.ui.PrintHint("usage: sos <burnt|salty|watery|other>")
		return
	}
	cook.OpenSOS()
	cook.RequestRemedy(category)
	a.ui.PrintHint("düşünüyor...")
}

// demoRecipe is a built-in recipe for trying the session offline.
func demoRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID:      "demo",
		Slug:    "demo",
		Title:   "Menemen",
		ChefTip: "Domatesleri rendelemek yerine küçük küpler halinde doğrarsan menemen daha dokulu olur.",
		Steps: []domain.RecipeStep{
			{Content: "Biberleri ince ince doğra ve tereyağında 2 dakika kavur.", TimerSeconds: 120},
			{Content: "Domatesleri küp küp doğrayıp ekle, suyunu çekene kadar pişir.", TimerSeconds: 300},
			{Content: "Yumurtaları kır, tuzunu ekle ve karıştırarak pişir.", TimerSeconds: 120},
			{Content: "Ocaktan al, üzerine pul biber serp ve sıcak servis et."},
		},
	}
}
