package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"botanize/internal/config"
	"botanize/internal/quota"
	"botanize/internal/taxonomy"
)

const plantNetName = "Pl@ntNet"

// CheckPlantNet verifies the recognition API is reachable and accepts the key.
// It lists projects, which costs no identification quota.
func CheckPlantNet(ctx context.Context, baseURL, apiKey string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: plantNetName, Detail: "missing base url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: plantNetName, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := url.Values{"api-key": {strings.TrimSpace(apiKey)}}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/projects?"+query.Encode(), nil)
	if err != nil {
		return Result{Name: plantNetName, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		return Result{Name: plantNetName, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: plantNetName, Passed: true, Detail: "reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: plantNetName, Detail: "auth failed (invalid api key)"}
	case http.StatusTooManyRequests:
		return Result{Name: plantNetName, Detail: "daily identification quota exhausted"}
	default:
		return Result{Name: plantNetName, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSpecies parses the species reference file.
func CheckSpecies(ctx context.Context, path string) Result {
	species, err := taxonomy.ReadSpecies(ctx, path)
	if err != nil {
		return Result{Name: "Species", Detail: err.Error()}
	}
	if len(species) == 0 {
		return Result{Name: "Species", Detail: fmt.Sprintf("%s (error: no species)", path)}
	}
	return Result{Name: "Species", Passed: true, Detail: fmt.Sprintf("%s (%d species)", path, len(species))}
}

// CheckVocabulary parses the trait vocabulary file.
func CheckVocabulary(ctx context.Context, path string) Result {
	terms, err := taxonomy.ReadTerms(ctx, path)
	if err != nil {
		return Result{Name: "Vocabulary", Detail: err.Error()}
	}
	return Result{Name: "Vocabulary", Passed: true, Detail: fmt.Sprintf("%s (%d terms)", path, len(terms))}
}

// CheckQuotaBackend opens the configured quota store and reads the count key.
func CheckQuotaBackend(ctx context.Context, cfg *config.Config) Result {
	name := "Quota backend"
	backend, err := quota.Open(ctx, cfg, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer backend.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, _, err := backend.Get(checkCtx, cfg.Quota.CountKey); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Quota.Backend, err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Quota.Backend}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
