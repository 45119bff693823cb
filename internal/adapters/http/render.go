package http

import (
	"strings"
	"time"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/ports"
)

const avatarBaseURL = "https://dcff1xvirvpfp.cloudfront.net/"

// renderView builds the response shape for one view, applying the
// display config and the per-item due label.
func (h *ViewHandler) renderView(v entities.View, payload *entities.SyncPayload, now time.Time) ports.ViewResponse {
	resp := ports.ViewResponse{
		Name:   v.Name,
		Config: v.Config,
		Items:  make([]ports.ItemResponse, 0, len(v.Items)),
	}
	if len(v.Items) == 0 {
		resp.Empty = h.translator.Translate("NOTASKS")
		return resp
	}

	hidden := make(map[string]struct{}, len(h.dashboard.HideLabelNames))
	for _, name := range h.dashboard.HideLabelNames {
		hidden[name] = struct{}{}
	}

	for _, item := range v.Items {
		resp.Items = append(resp.Items, h.renderItem(item, v.Config, payload, hidden, now))
	}

	return resp
}

func (h *ViewHandler) renderItem(
	item entities.Task,
	cfg entities.DisplayConfig,
	payload *entities.SyncPayload,
	hidden map[string]struct{},
	now time.Time,
) ports.ItemResponse {
	due := h.labeler.Label(item.SortDate, item.AllDay, now)

	out := ports.ItemResponse{
		ID:       item.ID,
		Content:  Shorten(item.Content, h.dashboard.MaxTitleLength, h.dashboard.WrapEvents),
		Priority: item.Priority,
		Due:      due,
		Category: due.Category,
		AllDay:   item.AllDay,
	}
	if item.Due != nil {
		out.DueDate = item.Due.Date
	}

	if project := payload.ProjectByID(item.ProjectID); project != nil {
		if cfg.ShowProjectName {
			out.ProjectName = project.Name
		}
		if cfg.ShowProjectColor {
			out.ProjectColor = project.Color
		}
	}

	if cfg.ShowLabels {
		for _, id := range item.Labels {
			label := payload.LabelByID(id)
			if label == nil {
				continue
			}
			if _, ok := hidden[label.Name]; ok {
				continue
			}
			out.Labels = append(out.Labels, label.Name)
		}
	}

	if h.dashboard.DisplayAvatar && item.ResponsibleUID != nil {
		if col := payload.CollaboratorByID(*item.ResponsibleUID); col != nil && col.ImageID != nil {
			out.AvatarURL = avatarBaseURL + *col.ImageID + "_big.jpg"
		}
	}

	return out
}

// Shorten trims a title to maxLength with an ellipsis, or, with wrap
// enabled, breaks it into lines of at most maxLength characters.
func Shorten(s string, maxLength int, wrap bool) string {
	if !wrap {
		trimmed := []rune(strings.TrimSpace(s))
		if maxLength > 0 && len(trimmed) > maxLength {
			return string(trimmed[:maxLength]) + "…"
		}
		return string(trimmed)
	}

	if maxLength <= 0 {
		maxLength = 25
	}

	var out strings.Builder
	var line string
	for _, word := range strings.Fields(s) {
		// max - 1 to account for the joining space
		if len(line)+len(word) < maxLength-1 {
			line += word + " "
			continue
		}
		if line != "" {
			out.WriteString(strings.TrimSpace(line))
			out.WriteString("\n")
		}
		out.WriteString(word)
		out.WriteString(" ")
		line = ""
	}
	return strings.TrimSpace(out.String() + line)
}
