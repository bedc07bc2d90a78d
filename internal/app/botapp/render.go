package botapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/modclient"
)

type menuEntry struct {
	Label string
	Kind  enums.EntityKind
}

var queueMenu = []menuEntry{
	{Label: "Profiles", Kind: enums.EntityKindProfile},
	{Label: "Users", Kind: enums.EntityKindUser},
	{Label: "Events", Kind: enums.EntityKindEvent},
	{Label: "Photos", Kind: enums.EntityKindPhoto},
	{Label: "Memories", Kind: enums.EntityKindMemory},
	{Label: "Projects", Kind: enums.EntityKindProject},
}

func menuRows() [][]string {
	rows := make([][]string, 0, (len(queueMenu)+1)/2)
	for i := 0; i < len(queueMenu); i += 2 {
		row := []string{queueMenu[i].Label}
		if i+1 < len(queueMenu) {
			row = append(row, queueMenu[i+1].Label)
		}
		rows = append(rows, row)
	}
	return rows
}

func kindByMenuLabel(label string) (enums.EntityKind, bool) {
	for _, entry := range queueMenu {
		if strings.EqualFold(entry.Label, label) {
			return entry.Kind, true
		}
	}
	return "", false
}

const previewLimit = 200

func formatQueueItem(item modclient.QueueItem) string {
	var b strings.Builder

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = fmt.Sprintf("%s #%d", item.Kind, item.EntityID)
	}
	fmt.Fprintf(&b, "%s #%d: %s\n", item.Kind, item.EntityID, title)
	fmt.Fprintf(&b, "Owner: %d\n", item.OwnerID)
	fmt.Fprintf(&b, "Submitted: %s\n", item.SubmittedAt.UTC().Format(time.RFC3339))

	if preview := strings.TrimSpace(item.Preview); preview != "" {
		if runes := []rune(preview); len(runes) > previewLimit {
			preview = string(runes[:previewLimit]) + "…"
		}
		fmt.Fprintf(&b, "\n%s\n", preview)
	}
	if item.PhotoURL != "" {
		fmt.Fprintf(&b, "\nPhoto: %s\n", item.PhotoURL)
	}

	return strings.TrimRight(b.String(), "\n")
}
