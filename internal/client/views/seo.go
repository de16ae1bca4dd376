package views

import (
	"context"
	"strconv"
	"text/template"
)

type seoView struct {
	list    *template.Template
	article *template.Template
}

func LoadSEO() (View, error) {
	list, err := parse("articles.tmpl")
	if err != nil {
		return nil, err
	}
	article, err := parse("article.tmpl")
	if err != nil {
		return nil, err
	}
	return &seoView{list: list, article: article}, nil
}

func (v *seoView) Name() string { return "seo-class" }

func (v *seoView) Show(ctx context.Context, env *Env) (string, error) {
	articles, err := env.Content.Articles(ctx)
	if err != nil {
		env.printf("Could not load articles: %s\n", describe(err))
		return "", nil
	}
	if err := v.list.Execute(env.Out, articles); err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "", nil
	}

	for {
		raw, err := env.Prompt.Text("Article number to read (empty to go back)")
		if err != nil || raw == "" {
			return "", err
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(articles) {
			env.printf("Pick a number between 1 and %d.\n", len(articles))
			continue
		}
		if err := v.article.Execute(env.Out, articles[n-1]); err != nil {
			return "", err
		}
	}
}
