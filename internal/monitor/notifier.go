package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var alertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "painel_alertas_total",
	Help: "Alertas de demandas atrasadas enviados por resultado.",
}, []string{"resultado"})

// Notifier envia alertas para canais externos.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}

// AlertMessage é o alerta enviado ao canal.
type AlertMessage struct {
	Title    string
	Lines    []string
	Severity string
	// Link aponta para a planilha, quando configurada.
	Link string
}

// SlackNotifier publica em um webhook de entrada do Slack.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier devolve nil quando o webhook não está configurado.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, msg AlertMessage) error {
	err := s.post(ctx, formatSlackMessage(msg))
	if err != nil {
		alertsSent.WithLabelValues("falha").Inc()
		return err
	}
	alertsSent.WithLabelValues("ok").Inc()
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack respondeu %d", resp.StatusCode)
	}
	return nil
}

func formatSlackMessage(msg AlertMessage) string {
	var b strings.Builder
	switch msg.Severity {
	case "warning":
		b.WriteString(":warning:")
	case "critical":
		b.WriteString(":rotating_light:")
	default:
		b.WriteString(":information_source:")
	}
	if msg.Title != "" {
		b.WriteString(" *" + msg.Title + "*")
	}
	for _, line := range msg.Lines {
		b.WriteString("\n• " + line)
	}
	if msg.Link != "" {
		b.WriteString("\n<" + msg.Link + "|Abrir planilha>")
	}
	return b.String()
}
