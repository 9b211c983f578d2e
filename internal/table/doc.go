// Package table is a generic sortable, paginated, optionally virtualized
// list widget.
//
// The widget owns no data decisions: it renders the rows it is given and
// reports sort/page/page-size changes through a single OnChange callback
// carrying the full pagination descriptor. Callers fetch pages themselves
// and hand the result back with SetData.
package table
