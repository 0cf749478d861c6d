package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poiesic/faqmatch/core"
)

const (
	// DefaultDataset is the Hugging Face dataset the corpus ships from.
	DefaultDataset = "MakTek/Customer_support_faqs_dataset"

	// DefaultDatasetsServer is the Hugging Face datasets-server API root.
	DefaultDatasetsServer = "https://datasets-server.huggingface.co"

	// downloadPageSize is the rows-per-request limit the datasets-server
	// accepts.
	downloadPageSize = 100
)

// Downloader fetches a dataset split through the Hugging Face
// datasets-server rows API, page by page.
type Downloader struct {
	client  *http.Client
	baseURL string
	dataset string
	config  string
	split   string
}

// DownloadOption configures a Downloader.
type DownloadOption func(*Downloader)

// WithHTTPClient overrides the HTTP client. Defaults to
// http.DefaultClient.
func WithHTTPClient(client *http.Client) DownloadOption {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithDatasetsServer overrides the API root, for tests.
func WithDatasetsServer(baseURL string) DownloadOption {
	return func(d *Downloader) {
		d.baseURL = baseURL
	}
}

// WithDataset selects a dataset other than DefaultDataset.
func WithDataset(name string) DownloadOption {
	return func(d *Downloader) {
		d.dataset = name
	}
}

// NewDownloader creates a Downloader for the train split of the configured
// dataset.
func NewDownloader(opts ...DownloadOption) *Downloader {
	d := &Downloader{
		client:  http.DefaultClient,
		baseURL: DefaultDatasetsServer,
		dataset: DefaultDataset,
		config:  "default",
		split:   "train",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type rowsResponse struct {
	Rows []struct {
		Row fileEntry `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Download fetches every row of the split and returns the entries with
// sequential ids. Rows missing a question or answer are dropped.
func (d *Downloader) Download(ctx context.Context) ([]core.Entry, error) {
	var raw []fileEntry
	offset := 0
	for {
		page, err := d.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			raw = append(raw, row.Row)
		}
		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, d.dataset)
	}

	entries := make([]core.Entry, 0, len(raw))
	for _, r := range raw {
		entry, err := core.NewEntry(core.ID(len(entries)+1), r.Question, r.Answer, r.Category)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (d *Downloader) fetchPage(ctx context.Context, offset int) (*rowsResponse, error) {
	query := url.Values{}
	query.Set("dataset", d.dataset)
	query.Set("config", d.config)
	query.Set("split", d.split)
	query.Set("offset", strconv.Itoa(offset))
	query.Set("length", strconv.Itoa(downloadPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/rows?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build rows request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datasets-server returned %s for %s",
			resp.Status, d.dataset)
	}

	var page rowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode rows response: %w", err)
	}
	return &page, nil
}
