package amp

import (
	"encoding/json"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	RuntimeScriptURL   = "https://cdn.ampproject.org/v0.js"
	AnalyticsScriptURL = "https://cdn.ampproject.org/v0/amp-analytics-0.1.js"
)

// AnalyticsConfig is the JSON body of an <amp-analytics type="gtag"> block.
type AnalyticsConfig struct {
	Vars     AnalyticsVars `json:"vars"`
	Triggers Triggers      `json:"triggers"`
}

type AnalyticsVars struct {
	GtagID string                  `json:"gtag_id"`
	Config map[string]GtagSettings `json:"config"`
}

type GtagSettings struct {
	Groups string `json:"groups"`
}

// Triggers are the story events reported to analytics. The ${...} values in
// their vars are expanded by the AMP runtime, not here.
type Triggers struct {
	StoryProgress       Trigger `json:"storyProgress"`
	StoryEnd            Trigger `json:"storyEnd"`
	TrackFocusState     Trigger `json:"trackFocusState"`
	TrackClickThrough   Trigger `json:"trackClickThrough"`
	StoryOpen           Trigger `json:"storyOpen"`
	StoryClose          Trigger `json:"storyClose"`
	AudioMuted          Trigger `json:"audioMuted"`
	AudioUnmuted        Trigger `json:"audioUnmuted"`
	PageAttachmentEnter Trigger `json:"pageAttachmentEnter"`
	PageAttachmentExit  Trigger `json:"pageAttachmentExit"`
}

type Trigger struct {
	On      string      `json:"on"`
	TagName string      `json:"tagName,omitempty"`
	Request string      `json:"request"`
	Vars    TriggerVars `json:"vars"`
}

type TriggerVars struct {
	EventName     string `json:"event_name"`
	EventAction   string `json:"event_action"`
	EventCategory string `json:"event_category"`
	EventLabel    string `json:"event_label,omitempty"`
	EventValue    string `json:"event_value,omitempty"`
	SendTo        string `json:"send_to"`
}

func eventTrigger(on, action, id string) Trigger {
	return Trigger{
		On:      on,
		Request: "event",
		Vars: TriggerVars{
			EventName:     "custom",
			EventAction:   action,
			EventCategory: "${title}",
			SendTo:        id,
		},
	}
}

func clickTrigger(on, action, id string) Trigger {
	t := eventTrigger(on, action, id)
	t.TagName = "a"
	t.Request = "click"
	return t
}

// NewAnalyticsConfig builds the default gtag configuration for id.
func NewAnalyticsConfig(id string) AnalyticsConfig {
	progress := eventTrigger("story-page-visible", "story_progress", id)
	progress.Vars.EventLabel = "${storyPageIndex}"
	progress.Vars.EventValue = "${storyProgress}"

	end := eventTrigger("story-last-page-visible", "story_complete", id)
	end.Vars.EventLabel = "${storyPageCount}"

	return AnalyticsConfig{
		Vars: AnalyticsVars{
			GtagID: id,
			Config: map[string]GtagSettings{id: {Groups: "default"}},
		},
		Triggers: Triggers{
			StoryProgress:       progress,
			StoryEnd:            end,
			TrackFocusState:     clickTrigger("story-focus", "story_focus", id),
			TrackClickThrough:   clickTrigger("story-click-through", "story_click_through", id),
			StoryOpen:           eventTrigger("story-open", "story_open", id),
			StoryClose:          eventTrigger("story-close", "story_close", id),
			AudioMuted:          eventTrigger("story-audio-muted", "story_audio_muted", id),
			AudioUnmuted:        eventTrigger("story-audio-unmuted", "story_audio_unmuted", id),
			PageAttachmentEnter: eventTrigger("story-page-attachment-enter", "story_page_attachment_enter", id),
			PageAttachmentExit:  eventTrigger("story-page-attachment-exit", "story_page_attachment_exit", id),
		},
	}
}

// ApplyAnalytics injects the amp-analytics extension script in front of the
// AMP runtime script and a gtag config block as the second child of <body>.
// A document without <head> or without the runtime script in it is returned
// unchanged. Each call inserts new blocks, so run it once per document.
func ApplyAnalytics(doc string, analyticsID string) string {
	out, _ := applyAnalytics(doc, analyticsID)
	return out
}

func applyAnalytics(doc string, analyticsID string) (string, bool) {
	return injectAnalytics(doc, analyticsID, hasHeadTag(doc))
}

// injectAnalytics takes headDeclared from the author's document, since doc
// may already be a re-rendered tree with a synthesized head.
func injectAnalytics(doc string, analyticsID string, headDeclared bool) (string, bool) {
	if analyticsID == "" || !headDeclared {
		return doc, false
	}
	root, ok := parse(doc)
	if !ok {
		return doc, false
	}
	head := findFirst(root, isElement(atom.Head))
	if head == nil {
		return doc, false
	}
	runtime := findFirst(head, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Script {
			return false
		}
		src, _ := attr(n, "src")
		return src == RuntimeScriptURL
	})
	body := findFirst(root, isElement(atom.Body))
	if runtime == nil || body == nil {
		return doc, false
	}

	block, err := analyticsBlock(analyticsID)
	if err != nil {
		return doc, false
	}
	runtime.Parent.InsertBefore(analyticsScript(), runtime)
	if first := body.FirstChild; first != nil && first.NextSibling != nil {
		body.InsertBefore(block, first.NextSibling)
	} else {
		body.AppendChild(block)
	}

	out, ok := render(root)
	if !ok {
		return doc, false
	}
	return out, true
}

func analyticsScript() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr: []html.Attribute{
			{Key: "async", Val: ""},
			{Key: "custom-element", Val: "amp-analytics"},
			{Key: "src", Val: AnalyticsScriptURL},
		},
	}
}

func analyticsBlock(id string) (*html.Node, error) {
	payload, err := json.Marshal(NewAnalyticsConfig(id))
	if err != nil {
		return nil, err
	}
	script := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr:     []html.Attribute{{Key: "type", Val: "application/json"}},
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: string(payload)})

	block := &html.Node{
		Type: html.ElementNode,
		Data: "amp-analytics",
		Attr: []html.Attribute{
			{Key: "type", Val: "gtag"},
			{Key: "data-credentials", Val: "include"},
		},
	}
	block.AppendChild(script)
	return block, nil
}
