package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"transcript-insights-go/internal/config"
	"transcript-insights-go/internal/export"
	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/pipeline"
	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/transcript"
	"transcript-insights-go/internal/types"
)

type analyzeRequest struct {
	Transcript    string              `json:"transcript"`
	Template      *types.TemplateSpec `json:"template,omitempty"`
	Strategy      string              `json:"strategy,omitempty"`
	Deployment    string              `json:"deployment,omitempty"`
	RunEvaluation bool                `json:"runEvaluation"`
	RunEnrichment bool                `json:"runEnrichment"`
}

func defaultTemplate() types.TemplateSpec {
	return types.TemplateSpec{
		Name: "meeting",
		Sections: []types.TemplateSection{
			{Key: "overview", Title: "Overview", Description: "What the meeting was about and who took part.", Group: "narrative"},
			{Key: "discussion", Title: "Discussion", Description: "The main threads of discussion in order.", Group: "narrative"},
			{Key: "outcomes", Title: "Outcomes", Description: "What was concluded, agreed or left open.", Group: "closing"},
			{Key: "next-steps", Title: "Next Steps", Description: "What happens after this meeting.", Group: "closing"},
		},
	}
}

// mockClient always answers with the same small analysis payload; used for
// offline demos via USE_MOCK_LLM=true.
type mockClient struct{}

func (mockClient) Complete(_ context.Context, _ string, _ llm.Params) (string, error) {
	return `{"summary": "Short demo meeting.", "sections": [{"key": "overview", "title": "Overview", "content": "Demo content."}], "actionItems": [{"task": "Follow up on the demo", "owner": "Alex", "timestamp": 30}], "decisions": [{"text": "Ship the demo", "timestamp": 60}], "quotes": [{"text": "Let's ship it", "speaker": "Alex", "timestamp": 61}]}`, nil
}

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "transcript-insights-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	var client llm.Client
	if cfg.LLM.UseMock {
		log.Info("mock LLM mode ON")
		client = mockClient{}
	} else {
		client = llm.NewGateway(cfg.LLM.GatewayURL, cfg.LLM.APIKey, cfg.LLM.Timeout())
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		segments := transcript.Parse(req.Transcript)
		if len(segments) == 0 {
			http.Error(w, "empty transcript", http.StatusBadRequest)
			return
		}
		tmpl := defaultTemplate()
		if req.Template != nil && len(req.Template.Sections) > 0 {
			tmpl = *req.Template
		}
		chosen := strategy.Auto
		if req.Strategy != "" {
			chosen = strategy.Strategy(req.Strategy)
		}

		start := time.Now()
		outcome, err := pipeline.ExecuteAnalysis(r.Context(), cfg, tmpl, segments, client, pipeline.Options{
			Strategy:      chosen,
			Deployment:    req.Deployment,
			RunEvaluation: req.RunEvaluation,
			RunEnrichment: req.RunEnrichment,
			Progress: func(current, total int, message string) {
				reqLog.WithField("progress", fmt.Sprintf("%d/%d", current, total)).Debug(message)
			},
		})
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			reqLog.WithError(err).Warn("pipeline returned error")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var results types.AnalysisResults
		if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		f, err := export.Workbook(results)
		if err != nil {
			reqLog.WithError(err).Error("workbook build failed")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="analysis.xlsx"`)
		if _, err := f.WriteTo(w); err != nil {
			reqLog.WithError(err).Error("failed to write workbook")
		}
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
