package publish

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	pomhttp "github.com/cloudposse/pomgraph/pkg/http"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/retry"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// RemoteChecker compares projects with the descriptors a repository serves
// under the repository layout.
type RemoteChecker struct {
	base   string
	client pomhttp.Client
	retry  *schema.RetryConfig
}

var _ Checker = (*RemoteChecker)(nil)

// NewRemoteChecker builds a checker from the publish section of the
// configuration. A nil client gets a default one with the configured timeout
// and token.
func NewRemoteChecker(config schema.Publish, client pomhttp.Client) (*RemoteChecker, error) {
	defer perf.Track(nil, "publish.NewRemoteChecker")()

	if strings.TrimSpace(config.URL) == "" {
		return nil, errUtils.Build(errUtils.ErrMissingRepository).
			WithHint("set publish.url in pomgraph.yaml or POMGRAPH_PUBLISH_URL").
			Err()
	}
	u, err := url.Parse(config.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid publish.url '%s'", errUtils.ErrMissingRepository, config.URL)
	}
	if err := retry.Validate(config.Retry); err != nil {
		return nil, err
	}

	if client == nil {
		token := config.Token
		if token == "" {
			token = pomhttp.TokenFromEnv()
		}
		client = pomhttp.NewDefaultClient(pomhttp.WithTimeout(config.Timeout), pomhttp.WithToken(u.Hostname(), token))
	}

	retryConfig := config.Retry
	if retryConfig == nil {
		d := retry.DefaultConfig()
		retryConfig = &d
	}
	return &RemoteChecker{base: strings.TrimRight(config.URL, "/"), client: client, retry: retryConfig}, nil
}

// URL is where the published descriptor of c is expected.
func (r *RemoteChecker) URL(c pom.Coordinates) string {
	return r.base + "/" + descriptor.RepositoryPath(c, descriptor.FormatYAML)
}

// Differs fetches the published descriptor of p and compares fingerprints.
// A missing descriptor differs.
func (r *RemoteChecker) Differs(ctx context.Context, p *pom.Project) (bool, error) {
	defer perf.Track(nil, "publish.RemoteChecker.Differs")()

	c := p.EffectiveCoordinates()
	if !c.IsResolved() {
		return false, fmt.Errorf("%w: %s has unresolved coordinates", errUtils.ErrPublishCheck, p)
	}
	location := r.URL(c)

	var body []byte
	err := retry.Do(ctx, r.retry, func() error {
		var err error
		body, err = pomhttp.Get(ctx, location, r.client)
		if pomhttp.IsClientError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if pomhttp.IsNotFound(err) {
		log.Debug("Project was never published", "project", p.String(), "url", location)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	published, err := descriptor.Decode(body, descriptor.FormatYAML, location)
	if err != nil {
		return false, err
	}
	remote, err := descriptor.Fingerprint(published)
	if err != nil {
		return false, err
	}
	local, err := descriptor.Fingerprint(p)
	if err != nil {
		return false, err
	}
	differs := remote != local
	log.Debug("Compared published descriptor", "project", p.String(), "differs", differs)
	return differs, nil
}
