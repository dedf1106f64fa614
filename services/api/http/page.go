package http

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/dashboard"
	"github.com/02loveslollipop/water-quality-viewer/internal/potability"
)

// pageData feeds the index template.
type pageData struct {
	Generation string
	HasChart   bool
	Display    potability.BoardView
	Count      int
}

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// handleIndex serves the viewer page.
func (s *Server) handleIndex(c *gin.Context) {
	snap := s.dash.Snapshot()
	data := pageData{
		Generation: snap.Generation,
		HasChart:   snap.Series.Len() > 0,
		Display:    snap.Display,
		Count:      snap.Series.Len(),
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTmpl.Execute(c.Writer, data); err != nil {
		s.logger.Error("failed to render index", zap.Error(err))
	}
}

// handleChartPNG serves the current chart image.
func (s *Server) handleChartPNG(c *gin.Context) {
	img, err := s.dash.ChartPNG()
	if err != nil {
		if errors.Is(err, dashboard.ErrNoData) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", img)
}

const indexHTML = `<!doctype html>
<html lang="pt-BR">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Qualidade da Água</title>
  <style>
    body { margin: 0; font-family: "Segoe UI", Arial, sans-serif; background: #0f172a; color: #e2e8f0; }
    header { padding: 20px 32px; border-bottom: 1px solid #1e293b; }
    h1 { margin: 0; font-size: 22px; }
    main { padding: 24px 32px; display: grid; gap: 24px; }
    .cards { display: flex; flex-wrap: wrap; gap: 16px; }
    .card { background: #1e293b; border-radius: 10px; padding: 16px 20px; min-width: 180px; }
    .card h2 { margin: 0 0 8px; font-size: 13px; color: #94a3b8; font-weight: 500; }
    .card p { margin: 0; font-size: 24px; }
    #statusBox { background: #7f1d1d; display: flex; align-items: center; gap: 12px; }
    #statusBox.safe { background: #14532d; }
    #statusIcon { font-size: 28px; }
    #waterChart { max-width: 100%; cursor: crosshair; background: #fff; border-radius: 10px; }
    .empty { color: #94a3b8; }
  </style>
</head>
<body>
  <header><h1>Monitoramento da Qualidade da Água</h1></header>
  <main>
    <section class="cards">
      <div class="card"><h2>TDS</h2><p id="tdsValue">{{.Display.TDS}}</p></div>
      <div class="card"><h2>Condutividade</h2><p id="condValue">{{.Display.Conductivity}}</p></div>
      <div class="card"><h2>Dureza</h2><p id="hardValue">{{.Display.Hardness}}</p></div>
      <div class="card{{if .Display.Safe}} safe{{end}}" id="statusBox">
        <span id="statusIcon">{{.Display.StatusIcon}}</span>
        <p id="statusText">{{.Display.StatusText}}</p>
      </div>
    </section>
    <section>
      {{if .HasChart}}
      <img id="waterChart" src="/chart.png?g={{.Generation}}" alt="Leituras de TDS, condutividade e dureza" />
      {{else}}
      <p class="empty" id="waterChartEmpty">Sem leituras disponíveis.</p>
      {{end}}
    </section>
  </main>
  <script>
    function render(ind) {
      if (!ind) return;
      document.getElementById("tdsValue").innerText = ind.tds;
      document.getElementById("condValue").innerText = ind.conductivity;
      document.getElementById("hardValue").innerText = ind.hardness;
      document.getElementById("statusText").textContent = ind.status_text;
      document.getElementById("statusIcon").textContent = ind.status_icon;
      document.getElementById("statusBox").classList.toggle("safe", ind.safe);
    }

    const img = document.getElementById("waterChart");
    if (img) {
      img.addEventListener("click", async (e) => {
        const x = e.offsetX * img.naturalWidth / img.clientWidth;
        const y = e.offsetY * img.naturalHeight / img.clientHeight;
        const res = await fetch("/api/v1/chart/click", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ x, y }),
        });
        if (res.status === 200) render((await res.json()).data);
      });
    }

    const proto = location.protocol === "https:" ? "wss:" : "ws:";
    const ws = new WebSocket(proto + "//" + location.host + "/api/v1/realtime/ws");
    ws.onmessage = (msg) => {
      const ev = JSON.parse(msg.data);
      render(ev.indicator);
      if (ev.type === "refreshed") {
        if (img) img.src = "/chart.png?g=" + ev.generation;
        else location.reload();
      }
    };
  </script>
</body>
</html>
`
