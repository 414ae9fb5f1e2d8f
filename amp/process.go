package amp

// Transform names reported by Process.
const (
	TransformVideoCache = "video_cache"
	TransformAnalytics  = "analytics"
)

// Options are the site settings that drive save-time processing.
type Options struct {
	VideoCache  bool
	AnalyticsID string
}

// Process runs the save-time pipeline over a freshly rendered document and
// reports which transforms changed it.
func Process(doc string, opts Options) (string, []string) {
	var applied []string
	headDeclared := hasHeadTag(doc)
	if out, ok := applyVideoCache(doc, opts.VideoCache); ok {
		doc = out
		applied = append(applied, TransformVideoCache)
	}
	if out, ok := injectAnalytics(doc, opts.AnalyticsID, headDeclared); ok {
		doc = out
		applied = append(applied, TransformAnalytics)
	}
	return doc, applied
}
