package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"greenbuilder/internal/models"

	"go.uber.org/zap"
)

// generatorClient реализует GeneratorClient (интерфейс определен в generator.go).
type generatorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// generateResponse mirrors the generation service's response body. The
// service may nest the variants under gpt_configurations (older backend) or
// return them at the top level; both are accepted.
type generateResponse struct {
	models.Design
	GPTConfigurations *struct {
		Configurations []models.Configuration `json:"configurations"`
	} `json:"gpt_configurations,omitempty"`
}

// NewGeneratorClient создает новый клиент для сервиса генерации дизайнов.
func NewGeneratorClient(baseURL string, timeout time.Duration, logger *zap.Logger) (GeneratorClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for generator service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &generatorClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout, // Таймаут на весь запрос: генерация может занимать минуты
		},
		logger: logger.Named("GeneratorClient"),
	}, nil
}

// Generate does POST /api/designs with the draft body and decodes the
// persisted design from the response. Transport failures become
// NetworkError, non-2xx statuses become ServiceError; нет автоматических
// повторов — каждая попытка терминальна.
func (c *generatorClient) Generate(ctx context.Context, draft models.DesignDraft) (*models.Design, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal design draft: %w", err)
	}

	reqURL := c.baseURL + "/api/designs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Dispatching generation request",
		zap.String("url", reqURL),
		zap.String("designName", draft.DesignName),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Generation request transport failure", zap.Error(err))
		return nil, &models.NetworkError{Op: "generate design", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Читаем тело для сообщения об ошибке, но не даем ему разрастись
		msgBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Generation service returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", msgBytes),
		)
		return nil, &models.ServiceError{StatusCode: resp.StatusCode, Message: string(msgBytes)}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &models.ServiceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("undecodable response body: %v", err),
		}
	}

	design := decoded.Design
	if len(design.Configurations) == 0 && decoded.GPTConfigurations != nil {
		design.Configurations = decoded.GPTConfigurations.Configurations
	}

	c.logger.Info("Generation request completed",
		zap.String("designName", design.DesignName),
		zap.Int("configurations", len(design.Configurations)),
		zap.Duration("latency", time.Since(start)),
	)
	return &design, nil
}
