package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/codelens-dev/codelens/internal/cerr"
)

// SidecarConfig configures the local embedding sidecar subprocess.
type SidecarConfig struct {
	// BinaryPath is the codelens-embed executable to launch. If empty, the
	// provider assumes a sidecar is already running at Addr and skips
	// spawning one.
	BinaryPath string
	Addr       string // host:port, default 127.0.0.1:8089
	Dimensions int
	StartupTimeout time.Duration
}

func (c SidecarConfig) withDefaults() SidecarConfig {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8089"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = 30 * time.Second
	}
	return c
}

// SidecarProvider talks to a codelens-embed process over HTTP: POST
// /embed with {texts, mode}, GET /healthz to confirm readiness.
type SidecarProvider struct {
	cfg    SidecarConfig
	client *http.Client

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewSidecarProvider builds a provider bound to cfg. Call Start before the
// first Embed call if BinaryPath is set.
func NewSidecarProvider(cfg SidecarConfig) *SidecarProvider {
	cfg = cfg.withDefaults()
	return &SidecarProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Start launches the sidecar binary (if configured) and waits for it to
// report healthy.
func (p *SidecarProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.BinaryPath == "" {
		return p.waitHealthy(ctx)
	}
	if p.isHealthy() {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinaryPath, "-addr", p.cfg.Addr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return cerr.Wrap("embedding.sidecar_start", cerr.KindInternal, "failed to start embedding sidecar", err)
	}
	p.cmd = cmd

	return p.waitHealthy(ctx)
}

func (p *SidecarProvider) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+p.cfg.Addr+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *SidecarProvider) waitHealthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StartupTimeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if p.isHealthy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return cerr.Wrap("embedding.sidecar_unhealthy", cerr.KindInternal, "embedding sidecar did not become healthy", ctx.Err())
		case <-ticker.C:
		}
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *SidecarProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts, Mode: string(mode)})
	if err != nil {
		return nil, cerr.Wrap("embedding.marshal", cerr.KindInternal, "failed to encode embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+p.cfg.Addr+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, cerr.Wrap("embedding.request", cerr.KindInternal, "failed to build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, cerr.Wrap("embedding.do", cerr.KindIO, "embedding sidecar request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, cerr.New("embedding.status", cerr.KindIO, fmt.Sprintf("embedding sidecar returned status %d", resp.StatusCode))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, cerr.Wrap("embedding.decode", cerr.KindParse, "failed to decode embed response", err)
	}
	return decoded.Embeddings, nil
}

func (p *SidecarProvider) Dimensions() int { return p.cfg.Dimensions }

func (p *SidecarProvider) Name() string { return "sidecar" }

// Close stops the sidecar subprocess if this provider started one,
// attempting SIGTERM before falling back to SIGKILL.
func (p *SidecarProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return p.cmd.Process.Kill()
	}
}
