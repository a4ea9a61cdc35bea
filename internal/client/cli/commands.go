package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/coordinator"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dustin/go-humanize"
)

func (a *App) Status(ctx context.Context) error {
	s := a.coord.Refresh(ctx)
	a.printf("online:        %s\n", yesNo(s.IsOnline))
	a.printf("offline mode:  %s\n", onOff(s.IsOfflineModeEnabled))
	a.printf("offline data:  %s\n", yesNo(s.HasOfflineData))
	a.printf("pending sync:  %d\n", s.PendingSyncCount)
	if !s.StorageInfo.Available {
		a.printf("storage:       unavailable\n")
		return nil
	}
	if est := s.StorageInfo.Estimate; est.Known() {
		a.printf("storage:       %s used, %s free of %s\n",
			bytesOf(est.Used), bytesOf(est.Available), bytesOf(est.Total))
	} else {
		a.printf("storage:       available\n")
	}
	return nil
}

func (a *App) SetOffline(ctx context.Context, enabled bool) error {
	a.coord.SetOfflineMode(enabled)
	if err := a.session.Set(ctx, sessionOfflineKey, []byte(onOff(enabled))); err != nil {
		a.log.Warn(ctx, "offline mode not kept for session", "error", err)
	}
	a.printf("Offline mode %s\n", onOff(enabled))
	return nil
}

func (a *App) Drafts(ctx context.Context) error {
	drafts, err := a.coord.ListDrafts(ctx)
	if err != nil {
		return a.fail("Listing drafts failed", err)
	}
	if len(drafts) == 0 {
		a.printf("No drafts\n")
		return nil
	}
	for _, d := range drafts {
		a.printf("%s  %s  %s\n", d.ID, d.LastModified.Local().Format(time.DateTime), firstLine(d.Content, 60))
	}
	return nil
}

func (a *App) DraftAdd(ctx context.Context) error {
	content, err := GetMultiline(a.in, "Draft text", a.out)
	if err != nil {
		return a.fail("Reading draft failed", err)
	}
	if content == "" {
		a.printf("Empty draft discarded\n")
		return nil
	}
	tags, err := GetSimpleText(a.in, "Tags (comma separated, optional)", a.out)
	if err != nil {
		return a.fail("Reading tags failed", err)
	}

	d, err := a.coord.SaveDraft(ctx, coordinator.DraftInput{Content: content, Tags: SplitList(tags), Kind: 1})
	if err != nil {
		return a.fail("Saving draft failed", err)
	}
	a.printf("Draft %s saved\n", d.ID)
	return nil
}

func (a *App) DraftEdit(ctx context.Context, id string) error {
	if _, err := a.coord.GetDraft(ctx, id); err != nil {
		return a.draftErr(id, err)
	}
	content, err := GetMultiline(a.in, "New draft text (empty keeps the current text)", a.out)
	if err != nil {
		return a.fail("Reading draft failed", err)
	}
	tags, err := GetSimpleText(a.in, "New tags (comma separated, empty keeps the current tags)", a.out)
	if err != nil {
		return a.fail("Reading tags failed", err)
	}

	var patch coordinator.DraftPatch
	if content != "" {
		patch.Content = &content
	}
	if tags != "" {
		list := SplitList(tags)
		patch.Tags = &list
	}
	if _, err := a.coord.UpdateDraft(ctx, id, patch); err != nil {
		return a.draftErr(id, err)
	}
	a.printf("Draft %s updated\n", id)
	return nil
}

func (a *App) DraftRemove(ctx context.Context, id string) error {
	if err := a.coord.DeleteDraft(ctx, id); err != nil {
		return a.draftErr(id, err)
	}
	a.printf("Draft %s deleted\n", id)
	return nil
}

func (a *App) DraftShow(ctx context.Context, id string) error {
	d, err := a.coord.GetDraft(ctx, id)
	if err != nil {
		return a.draftErr(id, err)
	}
	a.printf("ID:       %s\n", d.ID)
	a.printf("Created:  %s\n", d.CreatedAt.Local().Format(time.DateTime))
	a.printf("Modified: %s\n", d.LastModified.Local().Format(time.DateTime))
	if len(d.Tags) > 0 {
		a.printf("Tags:     %s\n", strings.Join(d.Tags, ", "))
	}
	a.printf("\n%s\n", d.Content)
	return nil
}

func (a *App) draftErr(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		a.printf("Draft %s not found\n", id)
		return err
	}
	return a.fail("Draft operation failed", err)
}

// Prefs prints preferences, or with "set <key> <value>" changes one of them.
// List-valued keys take comma separated values; an empty value clears them.
func (a *App) Prefs(ctx context.Context, args []string) error {
	p, err := a.coord.GetPreferences(ctx)
	if err != nil {
		return a.fail("Loading preferences failed", err)
	}

	if len(args) == 0 {
		a.printf("theme:          %s\n", p.Theme)
		a.printf("fontSize:       %s\n", p.FontSize)
		a.printf("language:       %s\n", p.Language)
		a.printf("defaultRelays:  %s\n", strings.Join(p.DefaultRelays, ", "))
		a.printf("mutedUsers:     %s\n", strings.Join(p.MutedUsers, ", "))
		a.printf("mutedWords:     %s\n", strings.Join(p.MutedWords, ", "))
		return nil
	}

	if args[0] != "set" || len(args) < 2 {
		a.printf("Usage: prefs [set <key> <value>]\n")
		return nil
	}
	value := strings.Join(args[2:], " ")
	switch args[1] {
	case "theme":
		p.Theme = value
	case "fontSize":
		p.FontSize = value
	case "language":
		p.Language = value
	case "defaultRelays":
		p.DefaultRelays = SplitList(value)
	case "mutedUsers":
		p.MutedUsers = SplitList(value)
	case "mutedWords":
		p.MutedWords = SplitList(value)
	default:
		a.printf("Unknown preference %q\n", args[1])
		return nil
	}
	if err := a.coord.SavePreferences(ctx, p); err != nil {
		return a.fail("Saving preferences failed", err)
	}
	a.printf("Preferences saved\n")
	return nil
}

func (a *App) Posts(ctx context.Context) error {
	posts, err := a.coord.ListCachedPosts(ctx)
	if err != nil {
		return a.fail("Listing posts failed", err)
	}
	if len(posts) == 0 {
		a.printf("No cached posts\n")
		return nil
	}
	for _, p := range posts {
		a.printf("%s  @%s  %s\n", p.ID, p.Author, firstLine(p.Content, 60))
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	n, err := a.coord.TriggerSync(ctx)
	switch {
	case errors.Is(err, common.ErrOffline):
		a.printf("Offline: changes stay queued until the server is reachable\n")
		return err
	case err != nil:
		return a.fail("Sync failed", err)
	case n == 0:
		a.printf("Nothing to sync\n")
	default:
		a.printf("Synced %d change(s)\n", n)
	}
	return nil
}

func (a *App) Cleanup(ctx context.Context) error {
	n, err := a.coord.Cleanup(ctx)
	if err != nil {
		return a.fail("Cleanup failed", err)
	}
	a.printf("Removed %d expired record(s)\n", n)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func bytesOf(n int64) string {
	if n < 0 {
		return strconv.FormatInt(n, 10)
	}
	return humanize.IBytes(uint64(n))
}

func firstLine(s string, max int) string {
	s, _, _ = strings.Cut(s, "\n")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

