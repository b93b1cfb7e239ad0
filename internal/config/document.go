package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newshub/internal/news"
)

// ErrConfig marks a configuration document that is missing, unreadable or
// invalid. It is the only error that aborts a run.
var ErrConfig = errors.New("config error")

// Auth schemes for a feed.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthAPIKey = "api_key"
)

// Feed payload formats.
const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

// Logical field names used as keys of SourceConfig.FieldPaths.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldURL         = "url"
	FieldImage       = "image"
	FieldSource      = "source"
	FieldPublishedAt = "published_at"
)

const (
	DefaultHeadlinesPath  = "articles"
	DefaultReportFilename = "global_news_report.html"
	DefaultReportTitle    = "Global News Digest"
	DefaultQuota          = 10
)

var defaultFieldPaths = map[string]string{
	FieldTitle:       "title",
	FieldDescription: "description",
	FieldURL:         "url",
	FieldImage:       "image",
	FieldSource:      "source",
	FieldPublishedAt: "publishedAt",
}

// SourceConfig describes one feed.
type SourceConfig struct {
	Name            string
	Endpoint        string
	Format          string
	AuthScheme      string
	AuthCredential  string
	QueryParams     map[string]string
	FieldPaths      map[string]string
	HeadlinesPath   string
	DefaultCategory string
}

// Path returns the configured dot-path for a logical field.
func (s SourceConfig) Path(field string) string {
	if p, ok := s.FieldPaths[field]; ok && p != "" {
		return p
	}
	return defaultFieldPaths[field]
}

// FallbackSource is the attribution used when neither the payload nor the
// heuristics yield one: the feed name, else its category.
func (s SourceConfig) FallbackSource() string {
	if s.Name != "" {
		return s.Name
	}
	return s.DefaultCategory
}

type Output struct {
	ReportFilename string
	ReportTitle    string
}

// Document is the parsed configuration document.
type Document struct {
	Sources    []SourceConfig
	Output     Output
	Quotas     map[string]int
	EnableTech bool
}

type rawResponseFormat struct {
	HeadlinesPath    string `json:"headlines_path" yaml:"headlines_path"`
	TitleField       string `json:"title_field" yaml:"title_field"`
	DescriptionField string `json:"description_field" yaml:"description_field"`
	URLField         string `json:"url_field" yaml:"url_field"`
	ImageField       string `json:"image_field" yaml:"image_field"`
	SourceField      string `json:"source_field" yaml:"source_field"`
	PublishedAtField string `json:"published_at_field" yaml:"published_at_field"`
}

type rawSource struct {
	Name           string            `json:"name" yaml:"name"`
	Type           string            `json:"type" yaml:"type"`
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`
	Format         string            `json:"format" yaml:"format"`
	AuthType       string            `json:"auth_type" yaml:"auth_type"`
	AuthHeader     string            `json:"auth_header" yaml:"auth_header"`
	Params         map[string]any    `json:"params" yaml:"params"`
	ResponseFormat rawResponseFormat `json:"response_format" yaml:"response_format"`
}

type rawDocument struct {
	NewsSources      []rawSource `json:"news_sources" yaml:"news_sources"`
	InternationalAPI *rawSource  `json:"international_api" yaml:"international_api"`
	DomesticAPI      *rawSource  `json:"domestic_api" yaml:"domestic_api"`
	Output           struct {
		ReportFilename string `json:"report_filename" yaml:"report_filename"`
		ReportTitle    string `json:"report_title" yaml:"report_title"`
	} `json:"output" yaml:"output"`
	Quotas         map[string]int `json:"quotas" yaml:"quotas"`
	Classification struct {
		EnableTech *bool `json:"enable_tech" yaml:"enable_tech"`
	} `json:"classification" yaml:"classification"`
}

// LoadDocument reads a JSON or YAML configuration document. Every failure
// wraps ErrConfig.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	return ParseDocument(data, filepath.Ext(path))
}

// ParseDocument decodes data; ext (".json", ".yaml", ".yml" or "") selects
// the decoder, sniffing the content when it is unknown.
func ParseDocument(data []byte, ext string) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var raw rawDocument
	if isJSON(data, ext) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse json: %v", ErrConfig, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrConfig, err)
		}
	}

	return raw.build()
}

func isJSON(data []byte, ext string) bool {
	switch strings.ToLower(ext) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (raw rawDocument) build() (*Document, error) {
	var sources []rawSource
	if len(raw.NewsSources) > 0 {
		sources = raw.NewsSources
	} else {
		if raw.InternationalAPI != nil {
			s := *raw.InternationalAPI
			s.Type = news.International
			sources = append(sources, s)
		}
		if raw.DomesticAPI != nil {
			s := *raw.DomesticAPI
			s.Type = news.Domestic
			sources = append(sources, s)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no feeds configured (news_sources or international_api/domestic_api)", ErrConfig)
	}

	doc := &Document{
		Output: Output{
			ReportFilename: raw.Output.ReportFilename,
			ReportTitle:    raw.Output.ReportTitle,
		},
	}
	if doc.Output.ReportFilename == "" {
		doc.Output.ReportFilename = DefaultReportFilename
	}
	if doc.Output.ReportTitle == "" {
		doc.Output.ReportTitle = DefaultReportTitle
	}

	for i, rs := range sources {
		sc, err := rs.build()
		if err != nil {
			return nil, fmt.Errorf("%w: feed %d (%s): %v", ErrConfig, i, rs.Name, err)
		}
		doc.Sources = append(doc.Sources, sc)
	}

	if raw.Classification.EnableTech != nil {
		doc.EnableTech = *raw.Classification.EnableTech
	} else {
		for _, s := range doc.Sources {
			if s.DefaultCategory == news.Tech {
				doc.EnableTech = true
				break
			}
		}
	}

	doc.Quotas = make(map[string]int)
	for _, c := range doc.Categories() {
		doc.Quotas[c] = DefaultQuota
	}
	for c, q := range raw.Quotas {
		if q < 0 {
			return nil, fmt.Errorf("%w: quota for %s must not be negative", ErrConfig, c)
		}
		doc.Quotas[c] = q
	}

	return doc, nil
}

// Categories lists the categories in use: the classifier's outcomes plus
// every type declared by a feed.
func (d *Document) Categories() []string {
	cats := []string{news.Domestic, news.International}
	if d.EnableTech {
		cats = append(cats, news.Tech)
	}
	var extra []string
	for _, s := range d.Sources {
		if !containsString(cats, s.DefaultCategory) && !containsString(extra, s.DefaultCategory) {
			extra = append(extra, s.DefaultCategory)
		}
	}
	sort.Strings(extra)
	return append(cats, extra...)
}

func (rs rawSource) build() (SourceConfig, error) {
	sc := SourceConfig{
		Name:            strings.TrimSpace(rs.Name),
		Endpoint:        strings.TrimSpace(rs.Endpoint),
		Format:          strings.ToLower(strings.TrimSpace(rs.Format)),
		AuthScheme:      strings.ToLower(strings.TrimSpace(rs.AuthType)),
		AuthCredential:  rs.AuthHeader,
		QueryParams:     make(map[string]string, len(rs.Params)),
		HeadlinesPath:   rs.ResponseFormat.HeadlinesPath,
		DefaultCategory: strings.TrimSpace(rs.Type),
	}
	if sc.DefaultCategory == "" {
		sc.DefaultCategory = news.International
	}
	if sc.HeadlinesPath == "" {
		sc.HeadlinesPath = DefaultHeadlinesPath
	}

	switch sc.Format {
	case "":
		sc.Format = FormatJSON
	case FormatJSON, FormatRSS:
	default:
		return sc, fmt.Errorf("unknown format %q", rs.Format)
	}

	switch sc.AuthScheme {
	case "":
		sc.AuthScheme = AuthNone
	case AuthNone, AuthBearer, AuthAPIKey:
	default:
		return sc, fmt.Errorf("unknown auth_type %q", rs.AuthType)
	}

	for k, v := range rs.Params {
		switch tv := v.(type) {
		case map[string]any, []any:
			return sc, fmt.Errorf("param %q must be a scalar", k)
		case nil:
			sc.QueryParams[k] = ""
		case float64:
			sc.QueryParams[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			sc.QueryParams[k] = fmt.Sprint(tv)
		}
	}

	rf := rs.ResponseFormat
	sc.FieldPaths = map[string]string{}
	for field, path := range map[string]string{
		FieldTitle:       rf.TitleField,
		FieldDescription: rf.DescriptionField,
		FieldURL:         rf.URLField,
		FieldImage:       rf.ImageField,
		FieldSource:      rf.SourceField,
		FieldPublishedAt: rf.PublishedAtField,
	} {
		if path != "" {
			sc.FieldPaths[field] = path
		}
	}

	return sc, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
