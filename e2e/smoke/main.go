package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	grpctransport "github.com/astro-web3/booking-api/internal/transport/grpc"
	httpclient "github.com/astro-web3/booking-api/pkg/http"
	"google.golang.org/protobuf/types/known/emptypb"
)

type registerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type rolesResponse struct {
	Roles []string `json:"roles"`
}

func main() {
	serverAddr := "http://localhost:8080"
	if len(os.Args) > 1 {
		serverAddr = os.Args[1]
	}

	ctx := context.Background()
	client := httpclient.NewClient(serverAddr, 10*time.Second)

	username := fmt.Sprintf("smoke-%d", time.Now().Unix())
	password := "Sm0ke-test!"

	var reg registerResponse
	resp, err := client.Post(ctx, "/api/management/register",
		httpclient.WithBody(map[string]string{
			"username": username,
			"email":    username + "@example.com",
			"password": password,
			"role":     "Customer",
		}),
		httpclient.WithResult(&reg),
	)
	if err != nil {
		log.Fatalf("Register request failed: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || reg.Status != "Success" {
		log.Fatalf("Register refused: %d %s", resp.StatusCode(), reg.Message)
	}
	fmt.Printf("registered %s: %s\n", username, reg.Message)

	var login loginResponse
	resp, err = client.Post(ctx, "/api/authenticate/login",
		httpclient.WithBody(map[string]string{"username": username, "password": password}),
		httpclient.WithResult(&login),
	)
	if err != nil {
		log.Fatalf("Login request failed: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Fatalf("Login rejected: %d", resp.StatusCode())
	}
	fmt.Printf("token issued, expires %s\n", login.Expiration.Format(time.RFC3339))

	resp, err = client.Get(ctx, "/api/management/roles")
	if err != nil {
		log.Fatalf("Anonymous request failed: %v", err)
	}
	fmt.Printf("anonymous /api/management/roles: %d\n", resp.StatusCode())

	var roles rolesResponse
	resp, err = client.Get(ctx, "/api/management/roles",
		httpclient.WithBearer(login.Token),
		httpclient.WithResult(&roles),
	)
	if err != nil {
		log.Fatalf("Authorized request failed: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Fatalf("Authorized request denied: %d", resp.StatusCode())
	}
	fmt.Printf("authorized /api/management/roles: %v\n", roles.Roles)

	check := grpctransport.NewCheckClient(http.DefaultClient, serverAddr)
	req := connect.NewRequest(&emptypb.Empty{})
	req.Header().Set("Authorization", "Bearer "+login.Token)
	res, err := check.CallUnary(ctx, req)
	if err != nil {
		log.Fatalf("Check rpc failed: %v", err)
	}
	fmt.Printf("check rpc: allowed=%t\n", res.Msg.GetFields()["allowed"].GetBoolValue())
}
