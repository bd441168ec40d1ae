package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/carlos18bp/editor-publisher-feature/config"
	"github.com/carlos18bp/editor-publisher-feature/models"
	"github.com/carlos18bp/editor-publisher-feature/repo"
	"github.com/carlos18bp/editor-publisher-feature/service"
	"github.com/carlos18bp/editor-publisher-feature/storage"
	"github.com/carlos18bp/editor-publisher-feature/utils"
)

// 1x1 transparent png, small enough to inline in seeded content.
const samplePNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func main() {
	var numBlogs int
	flag.IntVar(&numBlogs, "n", 20, "number of blogs to generate")
	flag.Parse()

	if numBlogs <= 0 {
		fmt.Println("error: number of blogs must be greater than 0")
		os.Exit(1)
	}

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	db := config.InitDatabase(&models.Blog{})

	imageStore := storage.NewImageStore(cfg.MediaRoot, cfg.MediaURLPrefix, cfg.SiteBaseURL, utils.Logger)
	extractor := storage.NewExtractor(imageStore, utils.Logger)
	blogs := service.NewBlogService(repo.NewBlogRepository(db), imageStore, extractor, utils.Logger)

	ctx := context.Background()
	created := 0
	for i := 0; i < numBlogs; i++ {
		content := "<p>" + gofakeit.Paragraph(2, 4, 15, "</p><p>") + "</p>"
		// every third blog carries an inline image so seeded data exercises
		// the extraction path
		if i%3 == 0 {
			content += `<img src="data:image/png;base64,` + samplePNG + `" alt="illustration">`
		}

		blog, err := blogs.Create(ctx, service.CreateInput{
			Title:   gofakeit.Sentence(gofakeit.Number(4, 10)),
			Content: content,
		})
		if err != nil {
			utils.Logger.Error("failed to seed blog", zap.Int("index", i), zap.Error(err))
			continue
		}
		created++
		utils.Logger.Info("seeded blog", zap.Uint("id", blog.ID), zap.String("title", blog.Title))
	}

	fmt.Printf("seeded %d/%d blogs\n", created, numBlogs)
}
