// README: Prints the intent smart search derives from a free-text query (keyword table, then Gemini when GEMINI_API_KEY is set).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"placemap/internal/ai"
	"placemap/internal/config"
	"placemap/internal/modules/search"
	"placemap/internal/types"
)

func main() {
	lat := flag.Float64("lat", 0, "caller latitude")
	lng := flag.Float64("lng", 0, "caller longitude")
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		query = "petrol pump near me in mumbai"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	vocab := search.DefaultVocabulary()
	if cfg.Search.VocabularyFile != "" {
		if vocab, err = search.LoadVocabulary(cfg.Search.VocabularyFile); err != nil {
			log.Fatalf("load vocabulary: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var opts []search.Option
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}
		defer provider.Close()
		opts = append(opts, search.WithClassifier(provider))
	}
	svc := search.NewService(nil, nil, nil, vocab, nil, opts...)

	req := search.Request{Query: query}
	if p := (types.Point{Lat: *lat, Lng: *lng}); !p.IsZero() {
		req.Location = &p
	}
	in := svc.Intent(ctx, req)

	fmt.Printf("Query:    %s\n", query)
	fmt.Printf("Category: %s\n", in.Category)
	fmt.Printf("City:     %s\n", in.City)
	fmt.Printf("Near me:  %t\n", in.NearMe)
	fmt.Printf("Leftover: %q\n", in.Query)
	if in.HasNearLocation() {
		fmt.Printf("Box:      %+v\n", types.BoxAround(*in.Location, search.DefaultNearMeRadiusKm))
	}
}
