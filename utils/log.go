/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cheney-yan/ai-shell/config"
)

// InitializeLogger configura e inicializa um logger com base nas variáveis de ambiente.
// O log estruturado substitui qualquer escrita direta no console pelos componentes:
// cada um recebe o *zap.Logger por injeção.
func InitializeLogger() (*zap.Logger, error) {
	// Definir o nível de log via variável de ambiente, default para Info
	logLevelEnv := strings.ToLower(os.Getenv("LOG_LEVEL"))
	var level zapcore.Level
	switch logLevelEnv {
	case "debug":
		level = zap.DebugLevel
	case "info":
		level = zap.InfoLevel
	case "warn":
		level = zap.WarnLevel
	case "error":
		level = zap.ErrorLevel
	case "dpanic":
		level = zap.DPanicLevel
	case "panic":
		level = zap.PanicLevel
	case "fatal":
		level = zap.FatalLevel
	default:
		level = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	// Em produção, JSON; em desenvolvimento, console
	env := strings.ToLower(os.Getenv("ENV"))
	var encoder zapcore.Encoder
	if env == "prod" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = config.DefaultLogFile
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    getMaxLogSizeFromEnv(), // MB
		MaxBackups: 3,
		MaxAge:     28, // Dias
		Compress:   true,
	}

	// A saída interativa (stream de tokens, menus) é dona do stdout; o log
	// vai apenas para o arquivo, a menos que AI_SHELL_LOG_STDERR esteja ativo.
	var writeSyncer zapcore.WriteSyncer
	if os.Getenv("AI_SHELL_LOG_STDERR") != "" {
		writeSyncer = zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stderr), zapcore.AddSync(lumberjackLogger))
	} else {
		writeSyncer = zapcore.AddSync(lumberjackLogger)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	logger := zap.New(core, zap.AddCaller())

	return logger, nil
}

// getMaxLogSizeFromEnv lê a variável de ambiente LOG_MAX_SIZE e retorna o valor em MB.
// Aceita valores como "50MB", "100KB", "1GB", etc.
func getMaxLogSizeFromEnv() int {
	envValue := os.Getenv("LOG_MAX_SIZE")
	if envValue != "" {
		size, err := parseSize(envValue)
		if err == nil && size > 0 {
			return int(size / (1024 * 1024))
		}
	}
	return config.DefaultMaxLogSize
}

// parseSize converte uma string de tamanho legível (como "50MB", "100KB", "1GB") para bytes.
func parseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	unit := "B"
	var multiplier int64 = 1

	if strings.HasSuffix(sizeStr, "KB") {
		unit = "KB"
		multiplier = 1024
	} else if strings.HasSuffix(sizeStr, "MB") {
		unit = "MB"
		multiplier = 1024 * 1024
	} else if strings.HasSuffix(sizeStr, "GB") {
		unit = "GB"
		multiplier = 1024 * 1024 * 1024
	}

	sizeStr = strings.TrimSuffix(sizeStr, unit)
	sizeStr = strings.TrimSpace(sizeStr)

	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("tamanho inválido: %s", sizeStr)
	}

	return size * multiplier, nil
}
