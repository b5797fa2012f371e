package main

import (
	"github.com/docker/docker/client"

	"github.com/3rg0n/concoct/internal/cerrors"
)

func dockerClientFromEnv() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, cerrors.NewMissingDependency("docker client", err)
	}
	return cli, nil
}
