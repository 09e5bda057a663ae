package metrics

import "github.com/prometheus/client_golang/prometheus"

// FlowMetrics counts orders moving through the sync pipeline.
type FlowMetrics struct {
	ordersFetched *prometheus.CounterVec
	rowsAppended  prometheus.Counter
	ordersPushed  prometheus.Counter
	itemsUpdated  prometheus.Counter
	reconciled    *prometheus.CounterVec
	rowsArchived  prometheus.Counter
}

func NewFlowMetrics(reg prometheus.Registerer) *FlowMetrics {
	if reg == nil {
		return &FlowMetrics{}
	}
	ordersFetched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_orders_fetched_total",
		Help: "Orders retrieved from the marketplace, by fetch mode.",
	}, []string{"mode"})
	rowsAppended := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sheet_rows_appended_total",
		Help: "Order item rows appended to the spreadsheet.",
	})
	ordersPushed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "erp_orders_created_total",
		Help: "Orders created in the ERP.",
	})
	itemsUpdated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_item_states_updated_total",
		Help: "Order item state updates sent to the marketplace.",
	})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_reconciled_total",
		Help: "Reconciler outcomes for tracked orders.",
	}, []string{"outcome"})
	rowsArchived := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sheet_rows_archived_total",
		Help: "Terminal rows moved to the archive sheet.",
	})
	reg.MustRegister(ordersFetched, rowsAppended, ordersPushed, itemsUpdated, reconciled, rowsArchived)
	return &FlowMetrics{
		ordersFetched: ordersFetched,
		rowsAppended:  rowsAppended,
		ordersPushed:  ordersPushed,
		itemsUpdated:  itemsUpdated,
		reconciled:    reconciled,
		rowsArchived:  rowsArchived,
	}
}

func (m *FlowMetrics) AddOrdersFetched(mode string, n int) {
	if m == nil || m.ordersFetched == nil {
		return
	}
	m.ordersFetched.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

func (m *FlowMetrics) AddRowsAppended(n int) {
	if m == nil || m.rowsAppended == nil {
		return
	}
	m.rowsAppended.Add(float64(n))
}

func (m *FlowMetrics) IncOrdersPushed() {
	if m == nil || m.ordersPushed == nil {
		return
	}
	m.ordersPushed.Inc()
}

func (m *FlowMetrics) IncItemsUpdated() {
	if m == nil || m.itemsUpdated == nil {
		return
	}
	m.itemsUpdated.Inc()
}

func (m *FlowMetrics) IncReconciled(outcome string) {
	if m == nil || m.reconciled == nil {
		return
	}
	m.reconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *FlowMetrics) AddRowsArchived(n int) {
	if m == nil || m.rowsArchived == nil {
		return
	}
	m.rowsArchived.Add(float64(n))
}
