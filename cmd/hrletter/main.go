package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/config"
	"github.com/empuraan01/fenmoai-hrletter/internal/document"
	"github.com/empuraan01/fenmoai-hrletter/internal/employee"
	"github.com/empuraan01/fenmoai-hrletter/internal/extract"
	"github.com/empuraan01/fenmoai-hrletter/internal/generator"
	"github.com/empuraan01/fenmoai-hrletter/internal/knowledge"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
	"github.com/empuraan01/fenmoai-hrletter/internal/services"
)

const usage = `Usage: hrletter <command> [arguments]

Commands:
  ingest [paths...]      parse and index policy documents (defaults to configured assets)
  generate <name>        generate an offer letter for one employee
  batch <name> [...]     generate offer letters for several employees
  search <query>         run a band-aware policy search
  status                 show collaborator readiness and index size
  reset                  drop the vector index
`

func main() {
	_ = godotenv.Load()

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	svc, err := buildService()
	if err != nil {
		logger.Fatal("failed to wire services", zap.Error(err))
	}

	ctx := context.Background()
	if err := run(ctx, svc, args[0], args[1:]); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func buildService() (*services.LetterService, error) {
	cfg := config.GetConfig()

	embedder := knowledge.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)

	var store knowledge.VectorStore
	if cfg.VectorStore.Provider == "milvus" {
		milvusStore, err := knowledge.NewMilvusVectorStore(knowledge.MilvusOptions{
			Address:    cfg.VectorStore.Milvus.Address,
			Username:   cfg.VectorStore.Milvus.Username,
			Password:   cfg.VectorStore.Milvus.Password,
			Collection: cfg.VectorStore.Milvus.Collection,
			Database:   cfg.VectorStore.Milvus.Database,
			VectorSize: cfg.VectorStore.Milvus.VectorSize,
			UseTLS:     cfg.VectorStore.Milvus.TLS,
		})
		if err != nil {
			return nil, err
		}
		store = milvusStore
	} else {
		store = knowledge.NewMemoryVectorStore()
	}

	employees, err := employee.NewManager(cfg.Employees.CSVPath)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.NewRetriever(store, embedder)
	searcher := retrieval.NewPolicySearcher(retriever)
	extractor := extract.NewExtractor()

	return services.NewLetterService(services.Deps{
		Parser:    document.NewParser(),
		Chunker:   knowledge.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap),
		Store:     store,
		Embedder:  embedder,
		Retriever: retriever,
		Searcher:  searcher,
		Assembler: services.NewContextAssembler(searcher, extractor),
		Employees: employees,
		Generator: generator.NewOpenAIGenerator(
			cfg.Generator.APIKey, cfg.Generator.Model,
			cfg.Generator.MaxTokens, cfg.Generator.Temperature),
	}), nil
}

func run(ctx context.Context, svc *services.LetterService, command string, args []string) error {
	switch command {
	case "ingest":
		paths := args
		if len(paths) == 0 {
			cfg := config.GetConfig()
			for _, name := range cfg.Assets.Documents {
				paths = append(paths, filepath.Join(cfg.Assets.Path, name))
			}
		}
		summary := svc.ProcessDocuments(ctx, paths)
		for _, doc := range summary.Processed {
			fmt.Printf("indexed %s (%s): %d pages, %d chunks\n",
				doc.Filename, doc.Category, doc.Pages, doc.Chunks)
		}
		for _, e := range summary.Errors {
			fmt.Printf("error: %s\n", e)
		}
		fmt.Printf("total chunks: %d\n", summary.TotalChunks)
		return nil

	case "generate":
		if len(args) != 1 {
			return fmt.Errorf("generate expects exactly one employee name")
		}
		result, err := svc.GenerateOfferLetter(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("--- Offer letter for %s (band %s) ---\n\n%s\n",
			result.EmployeeName, result.Band, result.Letter)
		return nil

	case "batch":
		if len(args) == 0 {
			return fmt.Errorf("batch expects at least one employee name")
		}
		for _, item := range svc.BatchGenerateOffers(ctx, args) {
			if item.Err != nil {
				fmt.Printf("%s: FAILED (%v)\n", item.EmployeeName, item.Err)
				continue
			}
			fmt.Printf("--- Offer letter for %s (band %s) ---\n\n%s\n\n",
				item.Result.EmployeeName, item.Result.Band, item.Result.Letter)
		}
		return nil

	case "search":
		if len(args) == 0 {
			return fmt.Errorf("search expects a query")
		}
		results, err := svc.SearchPolicies(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, r := range results {
			excerpt := r.Content
			if len(excerpt) > 200 {
				excerpt = excerpt[:200] + "..."
			}
			fmt.Printf("%2d. score=%.3f priority=%s band_specific=%t\n    %s\n",
				r.Rank, r.Similarity, r.Priority, r.BandSpecific,
				strings.ReplaceAll(excerpt, "\n", " "))
		}
		return nil

	case "status":
		status := svc.Status(ctx)
		fmt.Printf("embedder ready:  %t\n", status.EmbedderReady)
		fmt.Printf("store ready:     %t\n", status.StoreReady)
		fmt.Printf("generator ready: %t\n", status.GeneratorReady)
		fmt.Printf("indexed chunks:  %d\n", status.IndexedChunks)
		fmt.Printf("employees:       %d\n", status.Employees)
		return nil

	case "reset":
		if err := svc.ResetIndex(ctx); err != nil {
			return err
		}
		fmt.Println("index cleared")
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
