package server

// dashboardHTML is the embedded single-page dashboard. It connects to the
// /ws stream and shows admission outcomes in real time.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>sluice</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, monospace;
    background: #0d1117; color: #c9d1d9; padding: 20px;
  }
  h1 { color: #58a6ff; margin-bottom: 4px; font-size: 1.5em; }
  .subtitle { color: #8b949e; margin-bottom: 20px; font-size: 0.9em; }
  .stats {
    display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
    gap: 12px; margin-bottom: 20px;
  }
  .card {
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
    padding: 16px; text-align: center;
  }
  .num { font-size: 2em; font-weight: 700; }
  .num.admitted { color: #3fb950; }
  .num.delayed  { color: #d29922; }
  .num.rejected { color: #f85149; }
  .label { font-size: 0.8em; color: #8b949e; margin-top: 4px; }
  .log {
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
    max-height: 480px; overflow-y: auto;
  }
  .row {
    display: grid; grid-template-columns: 200px 110px 120px 1fr;
    padding: 8px 16px; border-bottom: 1px solid #21262d;
    font-size: 0.85em; align-items: center;
  }
  .row:hover { background: #1c2128; }
  .kind-admitted { color: #3fb950; }
  .kind-delayed  { color: #d29922; }
  .kind-rejected { color: #f85149; }
</style>
</head>
<body>
<h1>sluice</h1>
<div class="subtitle">live admission events</div>
<div class="stats">
  <div class="card"><div class="num admitted" id="admitted">0</div><div class="label">admitted</div></div>
  <div class="card"><div class="num delayed" id="delayed">0</div><div class="label">delayed</div></div>
  <div class="card"><div class="num rejected" id="rejected">0</div><div class="label">rejected</div></div>
</div>
<div class="log" id="log"></div>
<script>
  const counts = { admitted: 0, delayed: 0, rejected: 0 };
  const log = document.getElementById('log');
  const ws = new WebSocket('ws://' + location.host + '/ws');
  ws.onmessage = (msg) => {
    const ev = JSON.parse(msg.data);
    if (ev.kind in counts) {
      counts[ev.kind]++;
      document.getElementById(ev.kind).textContent = counts[ev.kind];
    }
    const row = document.createElement('div');
    row.className = 'row';
    const limit = ev.max_requests ? ev.max_requests + ' per ' + (ev.window / 1e9) + 's' : '';
    const wait = ev.wait ? (ev.wait / 1e6).toFixed(0) + 'ms wait' : '';
    row.innerHTML = '<span>' + new Date(ev.at).toLocaleTimeString() + '</span>' +
      '<span class="kind-' + ev.kind + '">' + ev.kind + '</span>' +
      '<span>' + limit + '</span><span>' + wait + '</span>';
    log.prepend(row);
    while (log.childElementCount > 200) log.lastChild.remove();
  };
</script>
</body>
</html>
`
