package cli

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// Fetch requests rawURL through the router. JSON bodies that look like posts
// are also written to the post cache.
func (a *App) Fetch(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return a.fail("Bad URL", err)
	}
	resp, err := a.router.Client().Do(req)
	if err != nil {
		return a.fail("Fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return a.fail("Reading response failed", err)
	}
	source := resp.Header.Get(common.CacheStatusHeader)
	if source == "" {
		source = "network"
	}
	a.printf("%s  %s  %s  %s\n", resp.Status, source, bytesOf(int64(len(body))), resp.Header.Get("Content-Type"))

	if resp.StatusCode == http.StatusOK && isJSON(resp.Header.Get("Content-Type")) {
		if n := a.cachePosts(ctx, body); n > 0 {
			a.printf("Cached %d post(s)\n", n)
		}
	}
	return nil
}

func (a *App) cachePosts(ctx context.Context, body []byte) int {
	var posts []models.PostPayload
	if err := json.Unmarshal(body, &posts); err != nil {
		var one models.PostPayload
		if err := json.Unmarshal(body, &one); err != nil {
			return 0
		}
		posts = []models.PostPayload{one}
	}

	n := 0
	for _, p := range posts {
		if p.ID == "" || p.Author == "" {
			continue
		}
		if _, err := a.coord.CachePost(ctx, p); err != nil {
			a.log.Warn(ctx, "caching post failed", "id", p.ID, "error", err)
			continue
		}
		n++
	}
	return n
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func (a *App) Audit(ctx context.Context) error {
	rep, err := a.prober.Report(ctx)
	if err != nil {
		a.printf("Some audits failed: %v\n", err)
	}

	a.printf("Buckets:\n")
	if len(rep.Buckets) == 0 {
		a.printf("  (none)\n")
	}
	for _, b := range rep.Buckets {
		a.printf("  %-24s %5d entries  %s\n", b.Name, b.EntryCount, bytesOf(b.TotalBytes))
	}
	a.printf("Persistent store: %s, tables %s\n",
		bytesOf(rep.Store.EstimatedBytes), strings.Join(rep.Store.TableNames, ", "))
	a.printf("Ephemeral store:  %d keys, %s\n", rep.Ephemeral.KeyCount, bytesOf(rep.Ephemeral.TotalBytes))
	return nil
}

func (a *App) ProbeWrite(ctx context.Context) error {
	ts, err := a.prober.WriteProbe(ctx)
	if err != nil {
		return a.fail("Probe write failed", err)
	}
	a.printf("Probe written at %s\n", ts.Format("2006-01-02T15:04:05.000Z07:00"))
	return nil
}

func (a *App) ProbeRead(ctx context.Context) error {
	res, err := a.prober.ReadProbe(ctx)
	if err != nil {
		return a.fail("Probe read failed", err)
	}
	a.printf("bucket: %s  store: %s", survived(res.BucketSurvived), survived(res.StoreSurvived))
	if !res.Timestamp.IsZero() {
		a.printf("  written %s", res.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
	}
	a.printf("\n")
	return nil
}

// Purge deletes every bucket, every table row and the session store.
func (a *App) Purge(ctx context.Context) error {
	if err := a.prober.PurgeEverything(ctx); err != nil {
		return a.fail("Purge failed", err)
	}
	a.coord.Refresh(ctx)
	a.printf("All local data deleted\n")
	return nil
}

func survived(ok bool) string {
	if ok {
		return "survived"
	}
	return "missing"
}
