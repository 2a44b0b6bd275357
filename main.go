package main

import (
	"flag"
	"log"
	"strings"

	"moonlife/config"
	"moonlife/router"
	"moonlife/storage"
)

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("月光生活家 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	config.PrintConfig()

	// 初始化存储
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}

	// 旧版独立心情记录迁移到同日的消费记录上
	if n, err := store.AttachLegacyMoods(); err != nil {
		log.Fatalf("迁移旧版心情记录失败: %v", err)
	} else if n > 0 {
		log.Printf("已迁移 %d 条旧版心情记录", n)
	}

	r := router.SetupRouter(cfg, store)

	log.Printf("==========================================")
	log.Printf("  🌙 月光生活家已启动")
	log.Printf("==========================================")
	log.Printf("  API接口: http://localhost%s/api/v1/", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}

// openStore 按配置选择存储后端
func openStore(cfg *config.Config) (*storage.RecordStore, error) {
	var (
		kv  storage.KV
		err error
	)
	switch cfg.Storage.Driver {
	case "mysql":
		kv, err = storage.OpenMySQLKV(cfg.Storage.MySQL.DSN())
	default:
		kv, err = storage.NewFileKV(cfg.Storage.DataDir)
	}
	if err != nil {
		return nil, err
	}
	return storage.Open(kv)
}
