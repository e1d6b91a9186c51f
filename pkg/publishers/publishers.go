package publishers

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
	"github.com/samvad-hq/cabbage-miniapp/internal/fileformat"
)

// Supported publisher types.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

const (
	webhookDefaultMethod  = "POST"
	webhookDefaultTimeout = 5
)

// Config is the decoded publishers file.
type Config struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig declares one sink and the operation kinds routed to it.
// An empty Events list subscribes the sink to every kind.
type PublisherConfig struct {
	ID        string                    `json:"id" yaml:"id"`
	Type      string                    `json:"type" yaml:"type"`
	Enabled   *bool                     `json:"enabled" yaml:"enabled"`
	Events    []domain.OperationKind    `json:"events" yaml:"events"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// AWSCredentials optionally pins static credentials instead of the default chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// HTTPPublisherConfig describes a webhook receiving shop events. When Secret
// is set every delivery is signed with HMAC-SHA256.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	Secret         string            `json:"secret" yaml:"secret"`
}

// SQSPublisherConfig holds AWS SQS settings.
type SQSPublisherConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSPublisherConfig holds AWS SNS settings.
type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// GCPPubSubPublisherConfig holds Google Cloud Pub/Sub settings.
type GCPPubSubPublisherConfig struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Topic     string `json:"topic" yaml:"topic"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
}

// LoadConfig reads, normalizes and validates a YAML or JSON publishers file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := fileformat.ReadFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	if len(cfg.Publishers) == 0 {
		return nil, errors.New("publishers file declares no publishers")
	}

	seen := make(map[string]struct{}, len(cfg.Publishers))
	for i := range cfg.Publishers {
		p := &cfg.Publishers[i]
		p.normalize()
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &cfg, nil
}

// Enabled returns the publishers not switched off.
func (c *Config) Enabled() []PublisherConfig {
	if c == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(c.Publishers))
	for _, p := range c.Publishers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds a publisher by id, enabled or not.
func (c *Config) Lookup(id string) (PublisherConfig, bool) {
	if c == nil {
		return PublisherConfig{}, false
	}
	id = strings.TrimSpace(id)
	for _, p := range c.Publishers {
		if p.ID == id {
			return p, true
		}
	}
	return PublisherConfig{}, false
}

// IsEnabled defaults to true when the flag is omitted.
func (p PublisherConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

func (p *PublisherConfig) normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))

	events := make([]domain.OperationKind, 0, len(p.Events))
	for _, k := range p.Events {
		k = domain.OperationKind(strings.ToLower(strings.TrimSpace(string(k))))
		if k != "" && !slices.Contains(events, k) {
			events = append(events, k)
		}
	}
	p.Events = events

	if p.HTTP != nil {
		p.HTTP.normalize()
	}
	if p.SQS != nil {
		p.SQS.QueueURL = strings.TrimSpace(p.SQS.QueueURL)
		p.SQS.Region = strings.TrimSpace(p.SQS.Region)
		p.SQS.Endpoint = strings.TrimSpace(p.SQS.Endpoint)
	}
	if p.SNS != nil {
		p.SNS.TopicARN = strings.TrimSpace(p.SNS.TopicARN)
		p.SNS.Region = strings.TrimSpace(p.SNS.Region)
		p.SNS.Endpoint = strings.TrimSpace(p.SNS.Endpoint)
	}
	if p.GCPPubSub != nil {
		p.GCPPubSub.ProjectID = strings.TrimSpace(p.GCPPubSub.ProjectID)
		p.GCPPubSub.Topic = strings.TrimSpace(p.GCPPubSub.Topic)
		p.GCPPubSub.Endpoint = strings.TrimSpace(p.GCPPubSub.Endpoint)
	}
}

func (h *HTTPPublisherConfig) normalize() {
	h.URL = strings.TrimSpace(h.URL)
	h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
	if h.Method == "" {
		h.Method = webhookDefaultMethod
	}
	if h.TimeoutSeconds <= 0 {
		h.TimeoutSeconds = webhookDefaultTimeout
	}
	h.Secret = strings.TrimSpace(h.Secret)

	headers := make(map[string]string, len(h.Headers))
	for k, v := range h.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			headers[k] = v
		}
	}
	h.Headers = nil
	if len(headers) > 0 {
		h.Headers = headers
	}
}

func (p PublisherConfig) validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	for _, k := range p.Events {
		if !k.Valid() {
			return fmt.Errorf("publisher %q subscribes to unknown event %q (known: %v)", p.ID, k, domain.Kinds())
		}
	}

	var missing []string
	switch p.Type {
	case TypeHTTP:
		if p.HTTP == nil {
			return p.blockMissing()
		}
		missing = required(map[string]string{"http.url": p.HTTP.URL})
	case TypeSQS:
		if p.SQS == nil {
			return p.blockMissing()
		}
		missing = required(map[string]string{"sqs.uri": p.SQS.QueueURL, "sqs.region": p.SQS.Region})
	case TypeSNS:
		if p.SNS == nil {
			return p.blockMissing()
		}
		missing = required(map[string]string{"sns.topic_arn": p.SNS.TopicARN, "sns.region": p.SNS.Region})
	case TypeGCPPubSub:
		if p.GCPPubSub == nil {
			return p.blockMissing()
		}
		missing = required(map[string]string{"gcp_pubsub.project_id": p.GCPPubSub.ProjectID, "gcp_pubsub.topic": p.GCPPubSub.Topic})
	case "":
		return fmt.Errorf("type is required for publisher %q", p.ID)
	default:
		return fmt.Errorf("publisher %q has unsupported type %q", p.ID, p.Type)
	}
	if len(missing) > 0 {
		return fmt.Errorf("publisher %q is missing %s", p.ID, strings.Join(missing, ", "))
	}
	return nil
}

func (p PublisherConfig) blockMissing() error {
	return fmt.Errorf("publisher %q has type %s but no %s block", p.ID, p.Type, p.Type)
}

// required returns the sorted names whose values are empty.
func required(fields map[string]string) []string {
	var missing []string
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
