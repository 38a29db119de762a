package site

import (
	"io"
	"strings"
	"text/template"
)

type indexData struct {
	Name        string
	Template    string
	ClassName   string
	Mode        string
	ThreeJS     string
	ContainerID string
}

var indexTemplate = template.Must(template.New("index.html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Name}} - Powered by PI Builder</title>
  <link rel="stylesheet" href="./lib/styles.css">
  <link rel="stylesheet" href="./template/styles.css">
</head>
<body>
  <div id="{{.ContainerID}}"></div>

  <!-- Dependencies ({{.Mode}} mode) -->
  <script src="{{.ThreeJS}}"></script>

  <!-- PI Builder Core -->
  <script src="./lib/globe.js"></script>
  <script src="./lib/config-loader.js"></script>
  <script src="./lib/panels.js"></script>
  <script src="./lib/pi-template.js"></script>

  <!-- Template: {{.Template}} -->
  <script src="./template/template.js"></script>

  <script>
    if (typeof {{.ClassName}} !== 'undefined') {
      {{.ClassName}}.apply();
    }

    PITemplate.init({
      containerId: '{{.ContainerID}}',
      configPath: './config.json',
      onReady: (config) => {
        document.title = config.business.name + ' - Powered by PI Builder';
      }
    });
  </script>
</body>
</html>
`))

func writeIndex(w io.Writer, d indexData) error {
	return indexTemplate.Execute(w, d)
}

// ClassName is the browser global a template script defines: "PI" plus the
// capitalized id with dashes removed.
func ClassName(templateID string) string {
	id := strings.ReplaceAll(templateID, "-", "")
	if id == "" {
		return "PI"
	}
	return "PI" + strings.ToUpper(id[:1]) + id[1:]
}
