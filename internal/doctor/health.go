package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthProbeTimeout = 3 * time.Second

// checkGatewayHealth probes a self-hosted speech gateway's gRPC health
// endpoint. Only relevant when engine.health_grpc is configured.
func checkGatewayHealth(ctx context.Context, target string) Check {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return Check{Name: "engine.health", Pass: false, Message: fmt.Sprintf("grpc client: %v", err)}
	}
	defer conn.Close()

	conn.Connect()
	if err := waitForReady(probeCtx, conn); err != nil {
		return Check{Name: "engine.health", Pass: false, Message: fmt.Sprintf("connect %s: %v", target, err)}
	}

	resp, err := healthpb.NewHealthClient(conn).Check(probeCtx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return Check{Name: "engine.health", Pass: false, Message: fmt.Sprintf("health check: %v", err)}
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return Check{Name: "engine.health", Pass: false, Message: fmt.Sprintf("gateway reports %s", resp.GetStatus())}
	}
	return Check{Name: "engine.health", Pass: true, Message: fmt.Sprintf("gateway serving at %s", target)}
}

// waitForReady blocks until the gRPC connection enters Ready or fails.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection entered shutdown state")
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("grpc readiness wait timed out in state %s", state.String())
		}
	}
}
