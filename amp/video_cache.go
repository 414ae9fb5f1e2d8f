package amp

const (
	videoTag      = "amp-video"
	cacheAttr     = "cache"
	cacheProvider = "google"
)

// ApplyVideoCache sets cache="google" on every amp-video element. Documents
// without videos, and documents that fail to parse, come back unchanged.
func ApplyVideoCache(doc string, enabled bool) string {
	out, _ := applyVideoCache(doc, enabled)
	return out
}

func applyVideoCache(doc string, enabled bool) (string, bool) {
	if !enabled {
		return doc, false
	}
	root, ok := parse(doc)
	if !ok {
		return doc, false
	}
	videos := findAll(root, isTag(videoTag))
	if len(videos) == 0 {
		return doc, false
	}
	for _, v := range videos {
		setAttr(v, cacheAttr, cacheProvider)
	}
	out, ok := render(root)
	if !ok {
		return doc, false
	}
	return out, true
}
