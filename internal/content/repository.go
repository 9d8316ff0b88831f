package content

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/metrics"
)

// Repository serves the site's static content from memory. The seed data
// ships with the binary; a YAML file can replace any section wholesale.
// Only the scam database mutates at runtime, through ReportScam.
type Repository struct {
	blog       []BlogPost
	audit      AuditReport
	tokenomics Tokenomics
	roadmap    []RoadmapPhase
	whitepaper Document
	privacy    Document
	team       []TeamMember

	mu    sync.RWMutex
	scams []ScamRecord
	seq   int

	collector *metrics.Metrics
	log       zerolog.Logger
}

// fileContent mirrors the optional YAML override file.
type fileContent struct {
	Blog       []BlogPost     `yaml:"blog"`
	Audit      *AuditReport   `yaml:"audit"`
	Tokenomics *Tokenomics    `yaml:"tokenomics"`
	Roadmap    []RoadmapPhase `yaml:"roadmap"`
	Whitepaper *Document      `yaml:"whitepaper"`
	Privacy    *Document      `yaml:"privacy"`
	Team       []TeamMember   `yaml:"team"`
	Scams      []ScamRecord   `yaml:"scams"`
}

func NewRepository(cfg config.ContentConfig, presale config.PresaleConfig, collector *metrics.Metrics, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		blog:       seedBlogPosts(),
		audit:      seedAudit(),
		tokenomics: seedTokenomics(presale),
		roadmap:    seedRoadmap(),
		whitepaper: seedWhitepaper(),
		privacy:    seedPrivacy(),
		team:       seedTeam(),
		scams:      seedScams(),
		collector:  collector,
		log:        log.With().Str("component", "content").Logger(),
	}

	if cfg.FilePath != "" {
		if err := r.loadFile(cfg.FilePath); err != nil {
			return nil, err
		}
	}

	sort.Slice(r.blog, func(i, j int) bool {
		return r.blog[i].PublishedAt.After(r.blog[j].PublishedAt)
	})

	return r, nil
}

func (r *Repository) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", path, err)
	}

	var fc fileContent
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("content: parse %s: %w", path, err)
	}

	if len(fc.Blog) > 0 {
		r.blog = fc.Blog
	}
	if fc.Audit != nil {
		r.audit = *fc.Audit
	}
	if fc.Tokenomics != nil {
		r.tokenomics = *fc.Tokenomics
	}
	if len(fc.Roadmap) > 0 {
		r.roadmap = fc.Roadmap
	}
	if fc.Whitepaper != nil {
		r.whitepaper = *fc.Whitepaper
	}
	if fc.Privacy != nil {
		r.privacy = *fc.Privacy
	}
	if len(fc.Team) > 0 {
		r.team = fc.Team
	}
	if len(fc.Scams) > 0 {
		r.scams = fc.Scams
	}

	r.log.Info().Str("path", path).Msg("content.loaded_from_file")
	return nil
}

// BlogPosts lists articles newest first.
func (r *Repository) BlogPosts() []BlogPost {
	return r.blog
}

// BlogPost looks up an article by slug.
func (r *Repository) BlogPost(slug string) (BlogPost, bool) {
	for _, post := range r.blog {
		if post.Slug == slug {
			return post, true
		}
	}
	return BlogPost{}, false
}

func (r *Repository) Audit() AuditReport      { return r.audit }
func (r *Repository) Tokenomics() Tokenomics  { return r.tokenomics }
func (r *Repository) Roadmap() []RoadmapPhase { return r.roadmap }
func (r *Repository) Whitepaper() Document    { return r.whitepaper }
func (r *Repository) Privacy() Document       { return r.privacy }
func (r *Repository) Team() []TeamMember      { return r.team }

// Scams lists the scam database, verified entries first, then newest first.
func (r *Repository) Scams() []ScamRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ScamRecord, len(r.scams))
	copy(out, r.scams)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Verified != out[j].Verified {
			return out[i].Verified
		}
		return out[i].ReportedAt.After(out[j].ReportedAt)
	})
	return out
}

// ReportScam records a community submission as an unverified entry.
func (r *Repository) ReportScam(report ScamReport) (ScamRecord, error) {
	if strings.TrimSpace(report.Name) == "" {
		return ScamRecord{}, &fieldError{code: errors.ErrCodeMissingField, field: "name"}
	}
	if strings.TrimSpace(report.Description) == "" {
		return ScamRecord{}, &fieldError{code: errors.ErrCodeMissingField, field: "description"}
	}

	category := strings.TrimSpace(report.Category)
	if category == "" {
		category = "other"
	}

	r.mu.Lock()
	r.seq++
	record := ScamRecord{
		ID:          fmt.Sprintf("scam_%d_%d", time.Now().Unix(), r.seq),
		Name:        strings.TrimSpace(report.Name),
		Category:    category,
		Description: strings.TrimSpace(report.Description),
		URL:         strings.TrimSpace(report.URL),
		ReportedAt:  time.Now().UTC(),
		Verified:    false,
	}
	r.scams = append(r.scams, record)
	r.mu.Unlock()

	if r.collector != nil {
		r.collector.ScamReportsTotal.Inc()
	}
	r.log.Info().
		Str("id", record.ID).
		Str("category", record.Category).
		Msg("content.scam_reported")

	return record, nil
}

type fieldError struct {
	code  errors.ErrorCode
	field string
}

func (e *fieldError) Error() string { return fmt.Sprintf("%s: %s", e.code, e.field) }

// FieldErrorCode extracts the error code and field from a repository error.
func FieldErrorCode(err error) (errors.ErrorCode, string, bool) {
	var fe *fieldError
	if stderrors.As(err, &fe) {
		return fe.code, fe.field, true
	}
	return "", "", false
}
