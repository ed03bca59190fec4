package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cyberwani/metabox/pkg/token"
)

// MediaSelection is one entry of a media-picker submission: whether
// the attachment was ticked and the URL to preview it with.
type MediaSelection struct {
	Selected bool
	URL      string
}

// InsertImages builds the list-item markup for the attachments a user
// selected in the media picker. The host's content-insertion mechanism
// appends the result to the field's image list, so each item carries
// the same delete affordance and hidden id input the image strategy
// emits. Entries that are unselected or lack a URL are skipped.
func InsertImages(itemID int64, fieldID string, selections map[int64]MediaSelection, tokens TokenIssuer) string {
	ids := make([]int64, 0, len(selections))
	for id := range selections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	deleteToken := issueToken(tokens, token.ScopeDelete, token.FieldSubject(itemID, fieldID))

	var buf bytes.Buffer
	for _, id := range ids {
		selection := selections[id]
		if !selection.Selected || selection.URL == "" {
			continue
		}
		fmt.Fprintf(&buf, `<li id="item_%d">`, id)
		fmt.Fprintf(&buf, `<img src="%s" />`, attr(selection.URL))
		fmt.Fprintf(&buf, `<a title="Delete this image" class="metabox-delete-file" href="#" data-payload="%d|%d|%s|%s">Delete</a>`,
			id, itemID, attr(fieldID), attr(deleteToken))
		fmt.Fprintf(&buf, `<input type="hidden" name="%s[]" value="%d" />`, attr(fieldID), id)
		buf.WriteString(`</li>`)
	}
	return buf.String()
}
