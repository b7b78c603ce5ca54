package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/middleware"
	"studentdesk/internal/util"
	"studentdesk/internal/views"
)

var (
	templates     *template.Template
	templatesOnce sync.Once
	templatesErr  error
	cfg           *config.Config
)

// SetConfig sets the config for debug logging
func SetConfig(c *config.Config) {
	cfg = c
}

// InitTemplates parses the embedded templates. Calling it at startup surfaces
// template errors before the first request.
func InitTemplates() error {
	initTemplates()
	return templatesErr
}

func debugf(format string, v ...interface{}) {
	if cfg != nil {
		cfg.Debugf(format, v...)
	}
}

var funcMap = template.FuncMap{
	"urlquery": url.QueryEscape,
	"len": func(slice interface{}) int {
		switch v := slice.(type) {
		case []interface{}:
			return len(v)
		case nil:
			return 0
		default:
			val := reflect.ValueOf(slice)
			if val.Kind() == reflect.Slice || val.Kind() == reflect.Array || val.Kind() == reflect.Map {
				return val.Len()
			}
			return 0
		}
	},
	"sub": func(a, b int) int {
		return a - b
	},
	"num": util.FormatNumber,
}

func initTemplates() {
	templatesOnce.Do(func() {
		entries, err := fs.ReadDir(views.TemplatesFS, ".")
		if err != nil {
			templatesErr = fmt.Errorf("read template directory: %w", err)
			return
		}
		var files []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
				files = append(files, entry.Name())
			}
		}
		if len(files) == 0 {
			templatesErr = fmt.Errorf("no template files found in embedded filesystem")
			return
		}
		debugf("templates: parsing %v", files)

		templates, templatesErr = template.New("").Funcs(funcMap).ParseFS(views.TemplatesFS, "*.html")
		if templatesErr != nil {
			templatesErr = fmt.Errorf("parse templates: %w", templatesErr)
			return
		}
		for _, t := range templates.Templates() {
			debugf("  - template %q", t.Name())
		}
	})
}

// Map template filenames to their content template names.
var contentTemplateMap = map[string]string{
	"login.html":            "login_content",
	"students.html":         "students_content",
	"student_new.html":      "student_new_content",
	"student_detail.html":   "student_detail_content",
	"connection_error.html": "connection_error_content",
}

// Templates that use auth_layout instead of main layout
var authLayoutTemplates = map[string]bool{
	"login.html": true,
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus renders name inside its layout with the given status code. The
// page is rendered to a buffer first so a template error still yields a clean 500.
func renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	initTemplates()
	if templatesErr != nil {
		logging.L().Errorf("templates unavailable: %v", templatesErr)
		http.Error(w, "Templates not initialized", http.StatusInternalServerError)
		return
	}

	contentTemplateName, ok := contentTemplateMap[name]
	if !ok || templates.Lookup(contentTemplateName) == nil {
		logging.L().Errorf("content template for %s not found", name)
		http.Error(w, fmt.Sprintf("Content template for '%s' not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["ContentTemplate"] = contentTemplateName
	// The layout compares these with eq, which fails on a missing key.
	for _, key := range []string{"Title", "Menu", "Flash", "Error"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	if _, ok := data["TeacherEmail"]; !ok && r != nil {
		data["TeacherEmail"] = middleware.GetTeacherEmail(r)
	}

	layoutName := "layout"
	if authLayoutTemplates[name] {
		layoutName = "auth_layout"
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, layoutName, data); err != nil {
		logging.L().Errorf("template execute error (%s): %v", name, err)
		http.Error(w, "Template execute error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	debugf("rendered %s (%d)", name, status)
}
