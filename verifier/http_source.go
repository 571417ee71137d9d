package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// defaultRequestTimeout is the maximum time we wait for the proof
// verification service to answer a commitment lookup.
const defaultRequestTimeout = 10 * time.Second

// commitmentResponse is the JSON document the proof verification service
// returns for a commitment lookup.
type commitmentResponse struct {
	CommitHash string `json:"commitHash"`
	VkHash     string `json:"vkHash"`
}

// HTTPCommitmentSource reads commitments from the proof verification
// service's HTTP endpoint.
type HTTPCommitmentSource struct {
	baseURL string
	client  *http.Client
}

// A compile time check to make certain that HTTPCommitmentSource implements
// the CommitmentSource interface.
var _ CommitmentSource = (*HTTPCommitmentSource)(nil)

// NewHTTPCommitmentSource creates a commitment source that queries the given
// base URL.
func NewHTTPCommitmentSource(baseURL string) *HTTPCommitmentSource {
	return &HTTPCommitmentSource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// CommitmentAndKey returns the commitment hash and verification key hash
// recorded for the given request ID.
//
// NOTE: This method is part of the CommitmentSource interface.
func (s *HTTPCommitmentSource) CommitmentAndKey(ctx context.Context,
	id RequestID) (common.Hash, common.Hash, error) {

	url := fmt.Sprintf("%s/commitments/%s", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return common.Hash{}, common.Hash{}, fmt.Errorf("%w: %v",
			ErrRequestNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return common.Hash{}, common.Hash{}, fmt.Errorf("commitment "+
			"lookup for %v failed with status %d", id,
			resp.StatusCode)
	}

	var doc commitmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return common.Hash{}, common.Hash{}, fmt.Errorf("invalid "+
			"commitment response: %w", err)
	}

	return common.HexToHash(doc.CommitHash), common.HexToHash(doc.VkHash),
		nil
}
