package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"logtracker/internal/bridge"
	"logtracker/internal/config"
	"logtracker/internal/geo"
	"logtracker/internal/ingest"
	"logtracker/internal/logger"
	"logtracker/internal/metrics"
	"logtracker/internal/query"
	"logtracker/internal/server"
	"logtracker/internal/store"

	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"
)

func main() {

	// ====================================================================
	// CPU 설정 (Fargate vCPU 특성 대응)
	// ====================================================================
	//
	// Fargate는 vCPU 단위로 CPU share가 제한된다.
	// Go 런타임은 기본적으로 모든 CPU 코어를 GOMAXPROCS로 사용하려고 하므로,
	// 운영에서는 GOMAXPROCS를 Task Definition 환경변수로 vCPU 수에 맞춘다.
	// ====================================================================
	if v := os.Getenv("GOMAXPROCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			runtime.GOMAXPROCS(n)
		}
	} else {
		runtime.GOMAXPROCS(1) // default: 1 logical CPU
	}

	// ====================================================================
	// Config / Logger / Metrics 초기화
	// ====================================================================
	//
	// - Config: 환경변수 기반 로드 (region, bucket, table, log group 등)
	// - Logger: zerolog 전역 설정 (운영 JSON / 개발 콘솔)
	// - Metrics: /metrics 엔드포인트에서 반환하는 운영 지표 집합
	// ====================================================================
	cfg := config.Load()
	logger.Init(cfg)
	m := metrics.New()

	// ====================================================================
	// AWS 공유 설정 + 저장소/브릿지 구성
	// ====================================================================
	//
	// 하나의 aws.Config 를 S3 / DynamoDB / CloudWatch Logs client 가 공유한다.
	// 모든 client 는 SDK retry 0 으로 고정된다 (실패는 즉시 보고 계약).
	// ====================================================================
	awsCfg, err := awsCfgLib.LoadDefaultConfig(
		context.Background(),
		awsCfgLib.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}

	blob := store.NewS3Blob(cfg, awsCfg)
	doc := store.NewDynamoDoc(cfg, awsCfg)

	resolver := geo.Open(cfg.GeoIPDB)
	defer resolver.Close()

	// ====================================================================
	// 핵심 서비스 구성
	// ====================================================================
	//
	//  - ingest.Service: 검증 → enrich → blob/document 이중 쓰기
	//  - query.Engine:  full scan → 필터 → 정렬 → URL hydration (동시)
	//  - bridge.Bridge: CloudWatch 최신 스트림 → LogEntry 정규화
	//
	// 세 경로 모두 요청 단위로 동작하며 백그라운드 워커는 없다.
	// ====================================================================
	ing := ingest.NewService(cfg, m, blob, doc, resolver)
	eng := query.NewEngine(m, doc, blob, cfg.PresignTTL)
	br := bridge.New(cfg, m, awsCfg)

	// ====================================================================
	// HTTP Handler 설정
	// ====================================================================
	//
	// 엔드포인트:
	//  - POST /log            : 로그 수집 (핵심)
	//  - GET  /logs           : 필터/정렬/hydration 조회
	//  - GET  /stats          : 동일 필터 결과 집계
	//  - GET  /cloudwatch-logs: 외부 스트림 브릿지 조회
	//  - GET  /metrics        : 운영 지표 확인
	//  - GET  /health         : ALB Target Group Health check용
	// ====================================================================
	h := server.NewHandler(cfg, m, ing, eng, br)

	mux := http.NewServeMux()
	mux.HandleFunc("/log", h.HandleSubmit)
	mux.HandleFunc("/logs", h.HandleQuery)
	mux.HandleFunc("/stats", h.HandleStats)
	mux.HandleFunc("/cloudwatch-logs", h.HandleCloudWatch)
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		// ALB는 단순 문자열로도 health 판단 가능
		w.Write([]byte("ok"))
	})

	// ====================================================================
	// HTTP 서버 설정 (Timeout 매우 중요)
	// ====================================================================
	//
	// ReadTimeout / WriteTimeout:
	//  - 요청은 짧은 JSON payload, 응답은 조회 목록
	//  - WriteTimeout 은 presign fan-out 이 포함되므로 Read 보다 여유 있게
	//
	// IdleTimeout:
	//  - ALB → 서버 연결에서 keep-alive 연결 관리 목적
	// ====================================================================
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.CORS(mux),
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ====================================================================
	// Graceful Shutdown (ECS/Fargate scale-in 대응)
	// ====================================================================
	//
	// SIGTERM 수신 시 HTTP 서버를 먼저 멈추고 (더 이상 요청 받지 않음)
	// in-flight 요청이 끝나기를 기다린다. 이중 쓰기가 요청 안에서
	// 동기적으로 끝나므로 별도 워커 정리는 필요 없다.
	// ====================================================================
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		cancel()
	}()

	// ====================================================================
	// 서버 시작
	// ====================================================================
	log.Info().Str("addr", cfg.HTTPAddr).Msg("log tracker server listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server terminated")
	}

	log.Info().Msg("shutdown complete")
}
