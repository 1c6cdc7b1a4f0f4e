package demoserver

import "time"

// FileDef is one file within a demo addon version.
type FileDef struct {
	Path         string
	MimeCategory string // image|directory|text|binary
	Mimetype     string
	Content      string
}

// VersionDef is one version of a demo addon.
type VersionDef struct {
	ID       int64
	Version  string
	Reviewed time.Time
	Files    []FileDef
}

// AddonDef is a demo addon with multiple reviewable versions.
type AddonDef struct {
	ID       int64
	Slug     string
	Name     string
	IconURL  string
	Versions []VersionDef
}

// File returns the file at path within v, or nil.
func (v *VersionDef) File(path string) *FileDef {
	for i := range v.Files {
		if v.Files[i].Path == path {
			return &v.Files[i]
		}
	}
	return nil
}

// Version returns the version with id, or nil.
func (a *AddonDef) Version(id int64) *VersionDef {
	for i := range a.Versions {
		if a.Versions[i].ID == id {
			return &a.Versions[i]
		}
	}
	return nil
}

// GetAllAddons returns the demo addon catalog.
func GetAllAddons() []AddonDef {
	return []AddonDef{
		getAmazingExtension(),
	}
}

func getAmazingExtension() AddonDef {
	reviewed := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)

	manifestV1 := `{
  "manifest_version": 2,
  "name": "Amazing Extension",
  "version": "1.0",
  "background": {
    "scripts": ["background.js"]
  }
}
`
	manifestV2 := `{
  "manifest_version": 2,
  "name": "Amazing Extension",
  "version": "1.1",
  "permissions": ["tabs", "storage"],
  "background": {
    "scripts": ["background.js"]
  },
  "content_scripts": [
    {
      "matches": ["<all_urls>"],
      "js": ["content/tracker.js"]
    }
  ]
}
`
	manifestV3 := `{
  "manifest_version": 2,
  "name": "Amazing Extension",
  "version": "1.2",
  "permissions": ["tabs", "storage", "webRequest", "<all_urls>"],
  "background": {
    "scripts": ["background.js"]
  },
  "content_scripts": [
    {
      "matches": ["<all_urls>"],
      "js": ["content/tracker.js"]
    }
  ]
}
`

	backgroundV1 := `browser.runtime.onInstalled.addListener(() => {
  console.log("installed");
});
`
	backgroundV2 := `browser.runtime.onInstalled.addListener(() => {
  console.log("installed");
});

browser.tabs.onUpdated.addListener((tabId, changeInfo) => {
  if (changeInfo.url) {
    browser.storage.local.set({ lastUrl: changeInfo.url });
  }
});
`
	trackerV2 := `document.addEventListener("click", (event) => {
  browser.runtime.sendMessage({ kind: "click", target: event.target.tagName });
});
`
	trackerV3 := `document.addEventListener("click", (event) => {
  browser.runtime.sendMessage({ kind: "click", target: event.target.tagName });
});

document.addEventListener("keydown", (event) => {
  browser.runtime.sendMessage({ kind: "key", code: event.code });
});
`
	readme := `# Amazing Extension

A demo web extension used to exercise the code review tooling.
`

	return AddonDef{
		ID:      9999,
		Slug:    "amazing-extension",
		Name:    "Amazing Extension",
		IconURL: "https://addons.example.org/icons/9999.png",
		Versions: []VersionDef{
			{
				ID:       1,
				Version:  "1.0",
				Reviewed: reviewed,
				Files: []FileDef{
					{Path: "manifest.json", MimeCategory: "text", Mimetype: "application/json", Content: manifestV1},
					{Path: "background.js", MimeCategory: "text", Mimetype: "application/javascript", Content: backgroundV1},
					{Path: "README.md", MimeCategory: "text", Mimetype: "text/markdown", Content: readme},
				},
			},
			{
				ID:       2,
				Version:  "1.1",
				Reviewed: reviewed.AddDate(0, 1, 0),
				Files: []FileDef{
					{Path: "manifest.json", MimeCategory: "text", Mimetype: "application/json", Content: manifestV2},
					{Path: "background.js", MimeCategory: "text", Mimetype: "application/javascript", Content: backgroundV2},
					{Path: "content", MimeCategory: "directory"},
					{Path: "content/tracker.js", MimeCategory: "text", Mimetype: "application/javascript", Content: trackerV2},
					{Path: "README.md", MimeCategory: "text", Mimetype: "text/markdown", Content: readme},
				},
			},
			{
				ID:       3,
				Version:  "1.2",
				Reviewed: reviewed.AddDate(0, 2, 0),
				Files: []FileDef{
					{Path: "manifest.json", MimeCategory: "text", Mimetype: "application/json", Content: manifestV3},
					{Path: "background.js", MimeCategory: "text", Mimetype: "application/javascript", Content: backgroundV2},
					{Path: "content", MimeCategory: "directory"},
					{Path: "content/tracker.js", MimeCategory: "text", Mimetype: "application/javascript", Content: trackerV3},
					{Path: "README.md", MimeCategory: "text", Mimetype: "text/markdown", Content: readme},
				},
			},
		},
	}
}
