// Package config handles configuration loading for taskdesk.
//
// # Configuration File
//
// Lookup order used by cmd/taskdesk:
//
//  1. --config flag
//  2. TASKDESK_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/taskdesk/config.yaml
//  4. ~/.config/taskdesk/config.yaml
//
// Files ending in .toml are decoded as TOML; everything else is YAML.
// When no file exists, defaults plus environment variables are used.
//
// # Environment
//
// ${VAR_NAME} references inside the file are expanded before parsing:
//
//	auth:
//	  jwt_secret: "${TASKDESK_JWT_SECRET}"
//
// After the file is decoded, TASKDESK_* variables (see the env struct tags)
// override individual keys.
//
// # Sections
//
//	server:
//	  http_addr: ":8080"
//	  tls_cert_file: ""
//	  tls_key_file: ""
//	  read_header_timeout: "10s"
//	  shutdown_timeout: "5s"
//	database:
//	  driver: "sqlite"           # sqlite, postgres
//	  path: "taskdesk.db"        # sqlite
//	  dsn: ""                    # postgres
//	auth:
//	  jwt_secret: "..."          # at least 32 bytes
//	  session_ttl: "168h"        # fixed
//	  secure_cookies: false      # force Secure behind a TLS proxy
//	rate_limit:
//	  enabled: true
//	  requests_per_minute: 10
//	  burst: 5
//	logging:
//	  level: "info"              # debug, info, warn, error
//	  format: "text"             # text, json
//	telemetry:
//	  enabled: false
//	  otlp_endpoint: "http://localhost:4318"
//	tailscale:
//	  enabled: false
//	  hostname: "taskdesk"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: true
package config
