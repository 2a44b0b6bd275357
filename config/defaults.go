package config

// DefaultConfigYAML 嵌入的默认配置，外部配置文件和环境变量可以逐项覆盖
var DefaultConfigYAML = []byte(`server:
  port: ":8080"
  mode: "debug"

storage:
  driver: "file"
  data_dir: "./data"
  mysql:
    host: "127.0.0.1"
    port: "3306"
    username: "moonlife"
    password: ""
    dbname: "moonlife"
    charset: "utf8mb4"

ai:
  base_url: "https://api.deepseek.com"
  api_key: ""
  model: "deepseek-chat"
  max_tokens: 1000
  temperature: 0.7
`)
