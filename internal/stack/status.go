package stack

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	dockerfilters "github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Compose labels every container it creates; status lookup keys off them.
const (
	labelProject = "com.docker.compose.project"
	labelService = "com.docker.compose.service"
)

// ServiceStatus is one row of the stack status report.
type ServiceStatus struct {
	Service   string
	Container string
	State     string // docker state, or "absent" when no container exists
	Ports     []string
}

// Running reports whether the service container is up.
func (s ServiceStatus) Running() bool { return s.State == "running" }

// Status lists the containers belonging to project and maps them onto the
// declared services. Services without a container are reported as absent
// so the output always covers the whole stack.
func Status(ctx context.Context, cli *client.Client, project string, services []string) ([]ServiceStatus, error) {
	filters := dockerfilters.NewArgs()
	filters.Add("label", labelProject+"="+project)

	containers, err := cli.ContainerList(ctx, container.ListOptions{All: true, Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("list containers for project %q: %w", project, err)
	}

	byService := make(map[string]ServiceStatus, len(containers))
	for _, c := range containers {
		service := c.Labels[labelService]
		if service == "" {
			continue
		}
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		byService[service] = ServiceStatus{
			Service:   service,
			Container: name,
			State:     c.State,
			Ports:     formatPorts(c.Ports),
		}
	}

	out := make([]ServiceStatus, 0, len(services))
	for _, service := range services {
		if st, ok := byService[service]; ok {
			out = append(out, st)
			delete(byService, service)
			continue
		}
		out = append(out, ServiceStatus{Service: service, State: "absent"})
	}

	// Containers labeled for the project but not in the declared service
	// list (stale, renamed) still show up at the end.
	extras := make([]ServiceStatus, 0, len(byService))
	for _, st := range byService {
		extras = append(extras, st)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Service < extras[j].Service })
	return append(out, extras...), nil
}

// formatPorts renders port summaries the way `docker ps` does, deduped
// and sorted. nat.Port normalizes the container-side port/proto pair.
func formatPorts(ports []container.Port) []string {
	seen := make(map[string]bool, len(ports))
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		target := nat.Port(fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
		label := target.Port() + "/" + target.Proto()
		if p.PublicPort > 0 {
			ip := p.IP
			if ip == "" {
				ip = "0.0.0.0"
			}
			label = fmt.Sprintf("%s:%d->%s", ip, p.PublicPort, label)
		}
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}
