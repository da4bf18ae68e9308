package main

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>TileDuel Server</title>
<meta name="description" content="Real-time two-player tile-toggling game server">
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{
--bg:#141417;
--card:#1f1f24;
--border:#32323a;
--fg:#e8e8ea;
--muted:#74747e;
--accent:#7ec8a9;
--radius:6px;
}
body{
font-family:system-ui,-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;
background:var(--bg);
color:var(--fg);
min-height:100vh;
display:flex;
align-items:center;
justify-content:center;
padding:24px;
}
.container{
width:100%;
max-width:420px;
display:flex;
flex-direction:column;
align-items:center;
gap:28px;
}
.title{font-size:18px;font-weight:600;letter-spacing:-0.01em}
.subtitle{font-size:12px;color:var(--muted);text-align:center;line-height:1.6}
.card{
width:100%;
background:var(--card);
border:1px solid var(--border);
border-radius:var(--radius);
padding:16px 20px;
font-size:12px;
color:var(--muted);
line-height:1.8;
}
.card code{color:var(--accent);font-size:11px}
.badge{
display:inline-flex;
align-items:center;
gap:8px;
font-size:11px;
padding:4px 12px;
border-radius:999px;
border:1px solid var(--border);
}
.badge-dot{width:7px;height:7px;border-radius:50%;background:var(--muted)}
.badge-dot-ok{background:var(--accent)}
</style>
</head>
<body>
<div class="container">
<div>
<div class="title">TileDuel Server</div>
<div class="subtitle">Real-time two-player tile-toggling game.<br>Create a room, share it, flip tiles together.</div>
</div>
<div class="card">
Connect over WebSocket at <code>/ws</code> and send JSON actions:<br>
<code>create-room</code>, <code>join-room</code>, <code>get-rooms</code>,
<code>toggle-tile</code>, <code>send-chat</code>, <code>resign-room</code>.
</div>
<div class="badge" id="status"><span class="badge-dot" id="dot"></span><span id="status-text">Checking…</span></div>
</div>
<script>
(function(){
var d=document.getElementById('dot'),t=document.getElementById('status-text');
function check(){
fetch('/health').then(function(r){return r.json()}).then(function(j){
if(j.status==='ok'){d.className='badge-dot badge-dot-ok';t.textContent='Online'}
else{fail()}
}).catch(fail);
}
function fail(){d.className='badge-dot';t.textContent='Offline'}
check();setInterval(check,30000);
})();
</script>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(indexHTML))
}
