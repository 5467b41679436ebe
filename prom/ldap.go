package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wongnai/ldapfixture/directory"
)

var (
	DescLdapConns    = prometheus.NewDesc("ldapfixture_connections", "Number of connections accepted by the fixture directory server", nil, nil)
	DescLdapBinds    = prometheus.NewDesc("ldapfixture_binds", "Number of binds handled by the fixture directory server", nil, nil)
	DescLdapUnbinds  = prometheus.NewDesc("ldapfixture_unbinds", "Number of unbinds handled by the fixture directory server", nil, nil)
	DescLdapSearches = prometheus.NewDesc("ldapfixture_searches", "Number of searches handled by the fixture directory server", nil, nil)
)

type LdapCollector struct {
	server *directory.Server
}

func NewLdapCollector(server *directory.Server) *LdapCollector {
	return &LdapCollector{server: server}
}

func (l *LdapCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- DescLdapConns
	descs <- DescLdapBinds
	descs <- DescLdapUnbinds
	descs <- DescLdapSearches
}

func (l *LdapCollector) Collect(metrics chan<- prometheus.Metric) {
	stats := l.server.Stats()

	metrics <- prometheus.MustNewConstMetric(DescLdapConns, prometheus.CounterValue, float64(stats.Conns))
	metrics <- prometheus.MustNewConstMetric(DescLdapBinds, prometheus.CounterValue, float64(stats.Binds))
	metrics <- prometheus.MustNewConstMetric(DescLdapUnbinds, prometheus.CounterValue, float64(stats.Unbinds))
	metrics <- prometheus.MustNewConstMetric(DescLdapSearches, prometheus.CounterValue, float64(stats.Searches))
}
