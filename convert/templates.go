package convert

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"mdc/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context   string
	Title     string
	ChatTitle string
	ChatID    string
	UserName  string
	Date      string
	Format    string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// expandFileName builds the output document name. When the output name
// template is empty the derived name based on title, user and date is used.
// The template result goes through the same character cleanup as the title.
func expandFileName(doc *config.DocumentConfig, title, chatTitle, chatID, userName string, now time.Time) (string, error) {
	if strings.TrimSpace(doc.OutputNameTemplate) == "" {
		return DeriveFileName(title, userName, doc.FileNameTransliterate, now), nil
	}

	values := Values{
		Context:   string(config.OutputNameTemplateFieldName),
		Title:     title,
		ChatTitle: chatTitle,
		ChatID:    chatID,
		UserName:  userName,
		Date:      now.Format("2006-01-02"),
		Format:    "docx",
	}
	name, err := expandTemplate(config.OutputNameTemplateFieldName, doc.OutputNameTemplate, values)
	if err != nil {
		return "", err
	}
	name = CleanFileName(name)
	if name == "" {
		return DeriveFileName(title, userName, doc.FileNameTransliterate, now), nil
	}
	name = config.CleanFileName(name)
	if !strings.HasSuffix(strings.ToLower(name), ".docx") {
		name += ".docx"
	}
	return name, nil
}
