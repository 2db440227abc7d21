// Package grpcexecutor dials the rollup execution engine's gRPC
// endpoint that a conductor.ExecutorClient implementation is built
// over, mirroring the service shape served by the astriaorg-flame
// execution server reference file (GetGenesisInfo, GetCommitmentState,
// ExecuteBlock, UpdateCommitmentState).
package grpcexecutor

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial opens a gRPC connection to a rollup executor at target,
// blocking until the connection is ready or timeout elapses. The
// returned conn is handed to a generated execution-service client
// stub by cmd/conductor, which adapts it to conductor.ExecutorClient.
func Dial(ctx context.Context, target string, timeout time.Duration) (*grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcexecutor: dialing %s: %w", target, err)
	}

	conn.Connect()
	for {
		state := conn.GetState()
		if state.String() == "READY" {
			return conn, nil
		}
		if !conn.WaitForStateChange(dialCtx, state) {
			conn.Close()
			return nil, fmt.Errorf("grpcexecutor: timed out connecting to %s: %w", target, dialCtx.Err())
		}
	}
}
