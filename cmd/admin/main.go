package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"resumeEditor/internal/auth"
)

// admin 为指定用户签发访问令牌，供 cmd/editor 或脚本调用 API。
func main() {
	var (
		userID     = flag.String("user", "", "用户 ID（必填）")
		privateKey = flag.String("private-key", "", "RS256 私钥路径（可选，默认读 AUTH_PRIVATE_KEY_PATH）")
		publicKey  = flag.String("public-key", "", "RS256 公钥路径（可选，默认读 AUTH_PUBLIC_KEY_PATH）")
		ttl        = flag.Duration("ttl", 24*time.Hour, "令牌有效期")
	)
	flag.Parse()

	u := strings.TrimSpace(*userID)
	if u == "" {
		log.Fatal("missing required flag: --user")
	}

	privatePath := firstNonEmpty(*privateKey, os.Getenv("AUTH_PRIVATE_KEY_PATH"))
	publicPath := firstNonEmpty(*publicKey, os.Getenv("AUTH_PUBLIC_KEY_PATH"), "keys/public.pem")
	if privatePath == "" {
		log.Fatal("private key is required (--private-key or AUTH_PRIVATE_KEY_PATH)")
	}

	svc, err := auth.LoadAuthService(privatePath, publicPath, *ttl)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}
	token, err := svc.IssueAccessToken(u)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ValidateToken(token); err != nil {
		log.Fatalf("key pair mismatch: %v", err)
	}

	fmt.Fprintf(os.Stderr, "已为用户 %s 签发访问令牌，有效期 %s：\n", u, ttl.String())
	fmt.Println(token)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
